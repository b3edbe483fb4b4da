package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fleetservis/backend/src/database"
)

func TestActivityService_RecordAndList(t *testing.T) {
	newTestDB(t)
	svc := NewActivityService(database.DB)

	svc.Record(context.Background(), "create", "transaction", 7, 3, "Fren bakımı")
	svc.Record(context.Background(), "delete", "vehicle", 2, 0, "")

	activities, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, activities, 2)

	// Newest first.
	assert.Equal(t, "delete", activities[0].Action)
	assert.Equal(t, "vehicle", activities[0].EntityType)
	assert.Nil(t, activities[0].UserID)

	assert.Equal(t, "create", activities[1].Action)
	require.NotNil(t, activities[1].EntityID)
	assert.Equal(t, int64(7), *activities[1].EntityID)
	require.NotNil(t, activities[1].UserID)
	assert.Equal(t, int64(3), *activities[1].UserID)
	assert.Equal(t, "Fren bakımı", activities[1].Detail)
}

func TestActivityService_ListClampsLimit(t *testing.T) {
	newTestDB(t)
	svc := NewActivityService(database.DB)

	for i := 0; i < 60; i++ {
		svc.Record(context.Background(), "update", "transaction", int64(i+1), 0, "")
	}

	activities, err := svc.List(context.Background(), -5)
	require.NoError(t, err)
	assert.Len(t, activities, 50)
}
