package staff

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
)

func checkIns(statuses ...string) []models.CheckIn {
	out := make([]models.CheckIn, len(statuses))
	for i, s := range statuses {
		out[i] = models.CheckIn{Status: s}
	}
	return out
}

func TestEfficiency(t *testing.T) {
	got := Efficiency(checkIns("on-time", "late", "on-time"))
	assert.True(t, got.Valid)
	assert.InDelta(t, 66.6666666, got.Value, 1e-6)

	got = Efficiency(checkIns("on-time", "on-time"))
	assert.Equal(t, models.Percentage{Value: 100, Valid: true}, got)

	got = Efficiency(checkIns("late", "absent"))
	assert.Equal(t, models.Percentage{Value: 0, Valid: true}, got)
}

func TestEfficiencyIsCaseSensitive(t *testing.T) {
	got := Efficiency(checkIns("On-Time", "on-time"))
	assert.Equal(t, 50.0, got.Value)
}

func TestEfficiencyEmptyInputIsNoData(t *testing.T) {
	got := Efficiency(nil)
	assert.False(t, got.Valid)
	assert.False(t, math.IsNaN(got.Value))
	assert.Nil(t, got.Ptr())

	raw, err := json.Marshal(got)
	assert.NoError(t, err)
	assert.JSONEq(t, "null", string(raw))

	got = Efficiency([]models.CheckIn{})
	assert.False(t, got.Valid)
}

func TestClassifyCheckIn(t *testing.T) {
	start := time.Date(2026, 1, 5, 6, 0, 0, 0, time.UTC)
	grace := 10 * time.Minute

	assert.Equal(t, models.CheckInOnTime, ClassifyCheckIn(start.Add(-5*time.Minute), start, grace))
	assert.Equal(t, models.CheckInOnTime, ClassifyCheckIn(start.Add(grace), start, grace))
	assert.Equal(t, models.CheckInLate, ClassifyCheckIn(start.Add(grace+time.Second), start, grace))
}
