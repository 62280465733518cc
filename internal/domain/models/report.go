package models

import "time"

// FlockHealthReport is the daily snapshot persisted by the scheduler.
type FlockHealthReport struct {
	Date             time.Time `bson:"date" json:"date"`
	Batches          int       `bson:"batches" json:"batches"`
	LiveBirds        int       `bson:"live_birds" json:"live_birds"`
	HealthyBirds     int       `bson:"healthy_birds" json:"healthy_birds"`
	ActiveIsolations int       `bson:"active_isolations" json:"active_isolations"`
	UnderTreatment   []string  `bson:"under_treatment" json:"under_treatment"`
	SlaughterReady   []string  `bson:"slaughter_ready" json:"slaughter_ready"`
	Overdrawn        []string  `bson:"overdrawn" json:"overdrawn"`
	UnmatchedCases   []string  `bson:"unmatched_cases" json:"unmatched_cases"`
	MortalityAlerts  []string  `bson:"mortality_alerts" json:"mortality_alerts"`
	StaffEfficiency  *float64  `bson:"staff_efficiency,omitempty" json:"staff_efficiency,omitempty"`
	CreatedAt        time.Time `bson:"created_at" json:"created_at"`
}
