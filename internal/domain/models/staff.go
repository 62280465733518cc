package models

import (
	"encoding/json"
	"time"
)

// CheckInOnTime is the status value counted as punctual by efficiency reports.
const (
	CheckInOnTime = "on-time"
	CheckInLate   = "late"
)

// Role identifies what a user is allowed to do.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// Staff is a farm worker or supervisor.
type Staff struct {
	ID        string     `bson:"_id" json:"id"`
	Name      string     `bson:"name" json:"name"`
	Role      Role       `bson:"role" json:"role"`
	ShiftLogs []ShiftLog `bson:"shift_logs,omitempty" json:"shift_logs,omitempty"`
}

// ShiftLog captures one worked shift.
type ShiftLog struct {
	Date           time.Time `bson:"date" json:"date"`
	CheckIn        time.Time `bson:"check_in" json:"check_in"`
	CheckOut       time.Time `bson:"check_out" json:"check_out"`
	TasksCompleted []string  `bson:"tasks_completed" json:"tasks_completed"`
}

// CheckIn is a single QR check-in event classified against the planned shift.
type CheckIn struct {
	StaffID   string    `bson:"staff_id" json:"staff_id"`
	ShiftDate time.Time `bson:"shift_date" json:"shift_date"`
	At        time.Time `bson:"at" json:"at"`
	Status    string    `bson:"status" json:"status"`
}

// Percentage is a ratio that may be undefined, e.g. when computed over no data.
type Percentage struct {
	Value float64
	Valid bool
}

// MarshalJSON renders an undefined percentage as null.
func (p Percentage) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// Ptr returns nil for an undefined percentage.
func (p Percentage) Ptr() *float64 {
	if !p.Valid {
		return nil
	}
	v := p.Value
	return &v
}
