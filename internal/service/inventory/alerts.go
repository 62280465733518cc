package inventory

// AlertLevel grades how urgently a mortality rate needs attention.
type AlertLevel string

const (
	AlertMedium   AlertLevel = "medium"
	AlertHigh     AlertLevel = "high"
	AlertCritical AlertLevel = "critical"
)

// MortalityBand is the display band for a batch mortality rate.
type MortalityBand string

const (
	BandNormal  MortalityBand = "normal"
	BandWarning MortalityBand = "warning"
	BandDanger  MortalityBand = "danger"
)

// AlertLevelFor maps a mortality percentage to an alert level.
func AlertLevelFor(rate float64) AlertLevel {
	switch {
	case rate > 5:
		return AlertCritical
	case rate > 2:
		return AlertHigh
	default:
		return AlertMedium
	}
}

// MortalityBandFor maps a mortality percentage to its display band.
func MortalityBandFor(rate float64) MortalityBand {
	switch {
	case rate > 2:
		return BandDanger
	case rate > 1:
		return BandWarning
	default:
		return BandNormal
	}
}

// Alerting reports whether a rate warrants a push notification.
func (l AlertLevel) Alerting() bool {
	return l == AlertHigh || l == AlertCritical
}
