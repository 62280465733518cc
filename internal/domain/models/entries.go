package models

import "time"

// MortalityReason enumerates causes a worker can pick for deaths.
const (
	ReasonDisease  = "disease"
	ReasonInjury   = "injury"
	ReasonWeakness = "weakness"
	ReasonUnknown  = "unknown"
)

// DailyEntry is the shed worker's daily feed, water and mortality log.
type DailyEntry struct {
	BatchID         string    `bson:"batch_id" json:"batch_id" binding:"required"`
	ShedID          string    `bson:"shed_id" json:"shed_id" binding:"required"`
	Date            time.Time `bson:"date" json:"date" binding:"required"`
	FeedIntakeKg    float64   `bson:"feed_intake_kg" json:"feed_intake_kg" binding:"min=0"`
	WaterIntakeL    float64   `bson:"water_intake_l" json:"water_intake_l" binding:"min=0"`
	MortalityCount  int       `bson:"mortality_count" json:"mortality_count" binding:"min=0"`
	MortalityReason string    `bson:"mortality_reason" json:"mortality_reason" binding:"omitempty,oneof=disease injury weakness unknown"`
	Notes           string    `bson:"notes,omitempty" json:"notes,omitempty"`
	RecordedBy      string    `bson:"recorded_by" json:"recorded_by"`
}

// SickBirdEntry requests isolation of sick birds into the sick bay.
type SickBirdEntry struct {
	BatchID              string `json:"batch_id" binding:"required"`
	Count                int    `json:"count" binding:"required,min=1,max=10000"`
	Symptoms             string `json:"symptoms" binding:"required,min=5"`
	MedicationName       string `json:"medication_name" binding:"required"`
	Dosage               string `json:"dosage" binding:"required"`
	WithdrawalPeriodDays int    `json:"withdrawal_period_days" binding:"min=0"`
}

// SlaughterEntry records birds sent to processing.
type SlaughterEntry struct {
	BatchID       string    `bson:"batch_id" json:"batch_id" binding:"required"`
	HeadCount     int       `bson:"head_count" json:"head_count" binding:"required,min=1"`
	LiveWeightKg  float64   `bson:"live_weight_kg" json:"live_weight_kg" binding:"required,gte=0.1"`
	DressedWeight float64   `bson:"dressed_weight_kg" json:"dressed_weight_kg" binding:"required,gte=0.1"`
	Notes         string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Date          time.Time `bson:"date" json:"date"`
	RecordedBy    string    `bson:"recorded_by" json:"recorded_by"`
}

// BatchInput creates a new batch.
type BatchInput struct {
	BatchID       string    `json:"batch_id" binding:"required"`
	Breed         string    `json:"breed" binding:"required"`
	HatchDate     time.Time `json:"hatch_date" binding:"required"`
	HouseLocation string    `json:"house_location" binding:"required"`
	InitialCount  int       `json:"initial_count" binding:"required,min=1"`
}

// OrderInput places a customer order.
type OrderInput struct {
	Items           []OrderItem `json:"items" binding:"required,min=1,dive"`
	ShippingAddress string      `json:"shipping_address" binding:"required,min=5"`
	Notes           string      `json:"notes"`
}

// CheckInInput records a worker check-in against a planned shift start.
type CheckInInput struct {
	StaffID    string    `json:"staff_id" binding:"required"`
	ShiftStart time.Time `json:"shift_start" binding:"required"`
	At         time.Time `json:"at"`
}
