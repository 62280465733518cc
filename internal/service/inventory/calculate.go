package inventory

import (
	"time"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
)

// Result is the derived inventory for one (batches, treatments) snapshot.
type Result struct {
	Batches []models.BatchInventory `json:"batches"`
	// Unmatched lists case IDs of isolated treatment records whose flock ID
	// matches no batch. They do not affect any count.
	Unmatched []string `json:"unmatched_cases"`
	// Overdrawn lists batch IDs whose healthy count went negative because
	// more birds are isolated than alive.
	Overdrawn []string `json:"overdrawn_batches"`
}

// Calculate derives healthy counts, isolations, slaughter readiness and
// medication status for every batch. Output order follows batches. Inputs are
// not mutated and now is the only source of time.
func Calculate(batches []models.Batch, records []models.TreatmentRecord, now time.Time) Result {
	isolations := make(map[string]int, len(batches))
	known := make(map[string]struct{}, len(batches))
	for _, b := range batches {
		known[b.BatchID] = struct{}{}
	}

	res := Result{
		Batches:   make([]models.BatchInventory, 0, len(batches)),
		Unmatched: []string{},
		Overdrawn: []string{},
	}

	for _, r := range records {
		if r.Status != models.BirdIsolated {
			continue
		}
		if _, ok := known[r.FlockID]; !ok {
			res.Unmatched = append(res.Unmatched, r.CaseID)
			continue
		}
		isolations[r.FlockID]++
	}

	for _, b := range batches {
		active := isolations[b.BatchID]
		healthy := b.LiveCount - active

		withdrawalCleared := b.WithdrawalEndDate == nil || now.After(*b.WithdrawalEndDate)

		status := models.MedicationClear
		if active > 0 {
			status = models.MedicationUnderTreatment
		}

		if healthy < 0 {
			res.Overdrawn = append(res.Overdrawn, b.BatchID)
		}

		res.Batches = append(res.Batches, models.BatchInventory{
			Batch:            b,
			HealthyCount:     healthy,
			ActiveIsolations: active,
			SlaughterReady:   withdrawalCleared && healthy > 0,
			MedicationStatus: status,
		})
	}

	return res
}
