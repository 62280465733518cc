package staff

import (
	"time"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
)

// Efficiency returns the share of on-time check-ins as a percentage.
// With no check-ins the result is not valid rather than NaN.
func Efficiency(checkIns []models.CheckIn) models.Percentage {
	if len(checkIns) == 0 {
		return models.Percentage{}
	}

	onTime := 0
	for _, c := range checkIns {
		if c.Status == models.CheckInOnTime {
			onTime++
		}
	}

	return models.Percentage{
		Value: float64(onTime) / float64(len(checkIns)) * 100,
		Valid: true,
	}
}

// ClassifyCheckIn labels a check-in against the planned shift start.
// Arriving within grace of the start counts as on time.
func ClassifyCheckIn(at, shiftStart time.Time, grace time.Duration) string {
	if at.After(shiftStart.Add(grace)) {
		return models.CheckInLate
	}
	return models.CheckInOnTime
}
