package services

import (
	"context"
	"database/sql"

	"github.com/username/fleetservis/backend/src/logger"
	"github.com/username/fleetservis/backend/src/models"
)

type activityService struct {
	db *sql.DB
}

func NewActivityService(db *sql.DB) ActivityService {
	return &activityService{db: db}
}

// Record writes one audit entry. Failures are logged and swallowed; the
// audit trail never blocks the operation it describes.
func (s *activityService) Record(ctx context.Context, action, entityType string, entityID int64, userID int64, detail string) {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO activities (action, entity_type, entity_id, user_id, detail)
	VALUES (?, ?, ?, ?, ?)`,
		action, entityType, nullableID(entityID), nullableID(userID), detail)
	if err != nil {
		logger.L.Error("failed to record activity", "action", action, "entityType", entityType, "error", err)
	}
}

func (s *activityService) List(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, action, entity_type, entity_id, user_id, COALESCE(detail, ''), created_at
	FROM activities
	ORDER BY id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]models.Activity, 0)
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Action, &a.EntityType, &a.EntityID, &a.UserID, &a.Detail, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func nullableID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
