package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "34ABC123", NormalizePlate(" 34 abc 123 "))
	assert.Equal(t, "06XYZ77", NormalizePlate("06xyz77"))
	assert.Equal(t, "", NormalizePlate("   "))
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Ahmet Yılmaz", NormalizeName("  Ahmet   Yılmaz "))
	assert.Equal(t, "", NormalizeName("\t \n"))
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "hello world", StripUnprintable("hello\x00 world"))
	assert.Equal(t, "line1\nline2\t", StripUnprintable("line1\nline2\t\x07"))
}
