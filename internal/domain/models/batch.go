package models

import "time"

// BatchStatus enumerates the lifecycle states of a flock batch.
type BatchStatus string

const (
	BatchActive BatchStatus = "active"
	BatchClosed BatchStatus = "closed"
)

// BirdStatus tracks where a treated bird group currently stands.
type BirdStatus string

const (
	BirdHealthy   BirdStatus = "Healthy"
	BirdIsolated  BirdStatus = "Isolated"
	BirdRecovered BirdStatus = "Recovered"
	BirdDead      BirdStatus = "Dead"
)

// Medication status labels exposed on derived inventory rows.
const (
	MedicationUnderTreatment = "Under Treatment"
	MedicationClear          = "Clear"
)

// Batch is a cohort of birds raised together.
type Batch struct {
	BatchID           string      `bson:"batch_id" json:"batch_id"`
	Breed             string      `bson:"breed" json:"breed"`
	HatchDate         time.Time   `bson:"hatch_date" json:"hatch_date"`
	DaysOld           int         `bson:"days_old" json:"days_old"`
	Location          string      `bson:"location" json:"location"`
	InitialCount      int         `bson:"initial_count" json:"initial_count"`
	LiveCount         int         `bson:"live_count" json:"live_count"`
	IsolatedCount     int         `bson:"isolated_count" json:"isolated_count"`
	DeadCount         int         `bson:"dead_count" json:"dead_count"`
	MortalityRate     float64     `bson:"mortality_rate" json:"mortality_rate"`
	FCR               float64     `bson:"fcr" json:"fcr"`
	Status            BatchStatus `bson:"status" json:"status"`
	MedicationActive  bool        `bson:"medication_active" json:"medication_active"`
	WithdrawalEndDate *time.Time  `bson:"withdrawal_end_date,omitempty" json:"withdrawal_end_date,omitempty"`
}

// TreatmentRecord is a sick-bay case opened against a batch.
type TreatmentRecord struct {
	CaseID               string     `bson:"case_id" json:"case_id"`
	FlockID              string     `bson:"flock_id" json:"flock_id"`
	Symptoms             []string   `bson:"symptoms" json:"symptoms"`
	MedicationGiven      string     `bson:"medication_given" json:"medication_given"`
	Dosage               string     `bson:"dosage" json:"dosage"`
	IsolationDate        time.Time  `bson:"isolation_date" json:"isolation_date"`
	RecoveryDate         *time.Time `bson:"recovery_date,omitempty" json:"recovery_date,omitempty"`
	MortalityDate        *time.Time `bson:"mortality_date,omitempty" json:"mortality_date,omitempty"`
	WithdrawalPeriodDays int        `bson:"withdrawal_period_days" json:"withdrawal_period_days"`
	Status               BirdStatus `bson:"status" json:"status"`
}

// BatchInventory is a batch enriched with its derived operational status.
// Derived fields are recomputed on every read and never stored.
type BatchInventory struct {
	Batch
	HealthyCount     int    `json:"healthy_count"`
	ActiveIsolations int    `json:"active_isolations"`
	SlaughterReady   bool   `json:"slaughter_ready"`
	MedicationStatus string `json:"medication_status"`
}

// BatchDelta is a change to a batch's counters that a store applies in a
// single atomic write.
type BatchDelta struct {
	Live     int
	Isolated int
	Dead     int
	// MinAvailable requires LiveCount-IsolatedCount >= MinAvailable before
	// the change is applied.
	MinAvailable    int
	WithdrawalEnd   *time.Time
	StartMedication bool
	CloseWhenEmpty  bool
}

// Inverse undoes the counter part of d.
func (d BatchDelta) Inverse() BatchDelta {
	return BatchDelta{Live: -d.Live, Isolated: -d.Isolated, Dead: -d.Dead}
}

// Apply returns b after d. It reports false when d would leave LiveCount
// negative or b has fewer than MinAvailable unisolated birds.
//
// IsolatedCount never drops below zero, WithdrawalEndDate only moves forward
// and MortalityRate is DeadCount over InitialCount for batches that record
// an initial count.
func (b Batch) Apply(d BatchDelta) (Batch, bool) {
	if b.LiveCount+d.Live < 0 {
		return b, false
	}
	if d.MinAvailable > 0 && b.LiveCount-b.IsolatedCount < d.MinAvailable {
		return b, false
	}

	b.LiveCount += d.Live
	b.IsolatedCount = max(0, b.IsolatedCount+d.Isolated)
	b.DeadCount += d.Dead

	if d.WithdrawalEnd != nil && (b.WithdrawalEndDate == nil || d.WithdrawalEnd.After(*b.WithdrawalEndDate)) {
		end := *d.WithdrawalEnd
		b.WithdrawalEndDate = &end
	}
	if d.StartMedication {
		b.MedicationActive = true
	}
	if b.InitialCount > 0 {
		b.MortalityRate = MortalityRate(b.DeadCount, b.InitialCount)
	}
	if d.CloseWhenEmpty && b.LiveCount == 0 {
		b.Status = BatchClosed
	}
	return b, true
}

// MortalityRate is dead birds as a percentage of the placed count.
func MortalityRate(dead, initial int) float64 {
	if initial <= 0 {
		return 0
	}
	return float64(dead) / float64(initial) * 100
}
