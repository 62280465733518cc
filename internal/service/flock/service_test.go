package flock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
	"github.com/MagetoJ/AviTrack/internal/service/inventory"
)

type memStore struct {
	mu         sync.Mutex
	batches    map[string]models.Batch
	treatments map[string]models.TreatmentRecord
	daily      []models.DailyEntry
	slaughters []models.SlaughterEntry
	failApply  error
	failDaily  error
}

func newMemStore(batches ...models.Batch) *memStore {
	s := &memStore{batches: map[string]models.Batch{}, treatments: map[string]models.TreatmentRecord{}}
	for _, b := range batches {
		s.batches[b.BatchID] = b
	}
	return s
}

func (s *memStore) GetBatch(_ context.Context, id string) (models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return models.Batch{}, models.ErrNotFound
	}
	return b, nil
}

func (s *memStore) CreateBatch(_ context.Context, b models.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.BatchID] = b
	return nil
}

func (s *memStore) ApplyBatchDelta(_ context.Context, id string, d models.BatchDelta) (models.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failApply != nil {
		return models.Batch{}, s.failApply
	}
	b, ok := s.batches[id]
	if !ok {
		return models.Batch{}, models.ErrNotFound
	}
	b, ok = b.Apply(d)
	if !ok {
		return models.Batch{}, models.ErrConflict
	}
	s.batches[id] = b
	return b, nil
}

func (s *memStore) GetTreatment(_ context.Context, id string) (models.TreatmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.treatments[id]
	if !ok {
		return models.TreatmentRecord{}, models.ErrNotFound
	}
	return r, nil
}

func (s *memStore) ListTreatmentsByFlock(_ context.Context, flockID string) ([]models.TreatmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TreatmentRecord
	for _, r := range s.treatments {
		if r.FlockID == flockID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) SaveTreatments(_ context.Context, records []models.TreatmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.treatments[r.CaseID] = r
	}
	return nil
}

func (s *memStore) UpdateTreatment(_ context.Context, r models.TreatmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.treatments[r.CaseID] = r
	return nil
}

func (s *memStore) SaveDailyEntry(_ context.Context, e models.DailyEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDaily != nil {
		return s.failDaily
	}
	s.daily = append(s.daily, e)
	return nil
}

func (s *memStore) SaveSlaughter(_ context.Context, e models.SlaughterEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slaughters = append(s.slaughters, e)
	return nil
}

var fixedNow = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func newTestService(store Store) *Service {
	svc := NewService(store, nil)
	svc.now = func() time.Time { return fixedNow }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("TR-%d", n)
	}
	return svc
}

func TestCreateBatch(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	batch, err := svc.CreateBatch(context.Background(), models.BatchInput{
		BatchID:       "B-2026-01",
		Breed:         "Cobb 500",
		HatchDate:     fixedNow.AddDate(0, 0, -21),
		HouseLocation: "House A",
		InitialCount:  500,
	})
	require.NoError(t, err)
	assert.Equal(t, 21, batch.DaysOld)
	assert.Equal(t, 500, batch.LiveCount)
	assert.Equal(t, models.BatchActive, batch.Status)
	assert.Contains(t, store.batches, "B-2026-01")

	_, err = svc.CreateBatch(context.Background(), models.BatchInput{BatchID: "B-2026-01", HatchDate: fixedNow})
	assert.ErrorIs(t, err, ErrBatchExists)
}

func TestCreateBatchRejectsFutureHatch(t *testing.T) {
	svc := newTestService(newMemStore())
	_, err := svc.CreateBatch(context.Background(), models.BatchInput{BatchID: "B1", HatchDate: fixedNow.Add(day)})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestIsolateOpensCasesAndSetsWithdrawal(t *testing.T) {
	store := newMemStore(models.Batch{BatchID: "B1", LiveCount: 100})
	svc := newTestService(store)

	records, err := svc.Isolate(context.Background(), models.SickBirdEntry{
		BatchID:              "B1",
		Count:                3,
		Symptoms:             "coughing, nasal discharge ; lethargy",
		MedicationName:       "Tylosin",
		Dosage:               "1g/L",
		WithdrawalPeriodDays: 5,
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"coughing", "nasal discharge", "lethargy"}, records[0].Symptoms)
	assert.Equal(t, models.BirdIsolated, records[2].Status)
	assert.Len(t, store.treatments, 3)

	batch := store.batches["B1"]
	assert.Equal(t, 3, batch.IsolatedCount)
	assert.Equal(t, 100, batch.LiveCount)
	assert.True(t, batch.MedicationActive)
	require.NotNil(t, batch.WithdrawalEndDate)
	assert.Equal(t, fixedNow.AddDate(0, 0, 5), *batch.WithdrawalEndDate)
}

func TestIsolateKeepsLaterWithdrawal(t *testing.T) {
	later := fixedNow.AddDate(0, 0, 30)
	store := newMemStore(models.Batch{BatchID: "B1", LiveCount: 10, WithdrawalEndDate: &later})
	svc := newTestService(store)

	_, err := svc.Isolate(context.Background(), models.SickBirdEntry{BatchID: "B1", Count: 1, WithdrawalPeriodDays: 2})
	require.NoError(t, err)
	assert.Equal(t, later, *store.batches["B1"].WithdrawalEndDate)
}

func TestIsolateBoundedByHealthyBirds(t *testing.T) {
	store := newMemStore(models.Batch{BatchID: "B1", LiveCount: 2})
	svc := newTestService(store)

	_, err := svc.Isolate(context.Background(), models.SickBirdEntry{BatchID: "B1", Count: 5, Symptoms: "lethargy"})
	assert.ErrorIs(t, err, ErrInvalidEntry)
	assert.Empty(t, store.treatments)
	assert.Zero(t, store.batches["B1"].IsolatedCount)

	_, err = svc.Isolate(context.Background(), models.SickBirdEntry{BatchID: "B1", Count: 2, Symptoms: "lethargy"})
	require.NoError(t, err)

	_, err = svc.Isolate(context.Background(), models.SickBirdEntry{BatchID: "B1", Count: 1, Symptoms: "lethargy"})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	res := inventory.Calculate([]models.Batch{store.batches["B1"]}, mapValues(store.treatments), fixedNow)
	assert.Zero(t, res.Batches[0].HealthyCount)
	assert.Empty(t, res.Overdrawn)
}

func TestIsolateGivesEachCaseItsOwnSymptoms(t *testing.T) {
	svc := newTestService(newMemStore(models.Batch{BatchID: "B1", LiveCount: 10}))

	records, err := svc.Isolate(context.Background(), models.SickBirdEntry{BatchID: "B1", Count: 2, Symptoms: "coughing, lethargy"})
	require.NoError(t, err)

	records[0].Symptoms[0] = "recovered"
	assert.Equal(t, []string{"coughing", "lethargy"}, records[1].Symptoms)
}

func mapValues(m map[string]models.TreatmentRecord) []models.TreatmentRecord {
	out := make([]models.TreatmentRecord, 0, len(m))
	for _, r := range m {
		out = append(out, r)
	}
	return out
}

func TestIsolateUnknownBatch(t *testing.T) {
	svc := newTestService(newMemStore())
	_, err := svc.Isolate(context.Background(), models.SickBirdEntry{BatchID: "nope", Count: 1})
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestResolveCase(t *testing.T) {
	store := newMemStore(models.Batch{BatchID: "B1", LiveCount: 10, IsolatedCount: 2})
	store.treatments["C1"] = models.TreatmentRecord{CaseID: "C1", FlockID: "B1", Status: models.BirdIsolated}
	store.treatments["C2"] = models.TreatmentRecord{CaseID: "C2", FlockID: "B1", Status: models.BirdIsolated}
	svc := newTestService(store)

	rec, err := svc.ResolveCase(context.Background(), "C1", models.BirdRecovered)
	require.NoError(t, err)
	require.NotNil(t, rec.RecoveryDate)
	assert.Equal(t, 10, store.batches["B1"].LiveCount)
	assert.Equal(t, 1, store.batches["B1"].IsolatedCount)

	rec, err = svc.ResolveCase(context.Background(), "C2", models.BirdDead)
	require.NoError(t, err)
	require.NotNil(t, rec.MortalityDate)
	assert.Equal(t, 9, store.batches["B1"].LiveCount)
	assert.Equal(t, 0, store.batches["B1"].IsolatedCount)

	_, err = svc.ResolveCase(context.Background(), "C2", models.BirdRecovered)
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = svc.ResolveCase(context.Background(), "C9", models.BirdRecovered)
	assert.ErrorIs(t, err, ErrCaseNotFound)

	_, err = svc.ResolveCase(context.Background(), "C1", models.BirdIsolated)
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestResolveOrphanedCase(t *testing.T) {
	store := newMemStore()
	store.treatments["C1"] = models.TreatmentRecord{CaseID: "C1", FlockID: "gone", Status: models.BirdIsolated}

	rec, err := newTestService(store).ResolveCase(context.Background(), "C1", models.BirdRecovered)
	require.NoError(t, err)
	assert.Equal(t, models.BirdRecovered, rec.Status)
}

func TestRecordDailyEntry(t *testing.T) {
	store := newMemStore(models.Batch{BatchID: "B1", LiveCount: 50})
	svc := newTestService(store)

	entry, err := svc.RecordDailyEntry(context.Background(), models.DailyEntry{BatchID: "B1", ShedID: "S1", MortalityCount: 2})
	require.NoError(t, err)
	assert.Equal(t, models.ReasonUnknown, entry.MortalityReason)
	assert.Equal(t, 48, store.batches["B1"].LiveCount)
	assert.Len(t, store.daily, 1)

	_, err = svc.RecordDailyEntry(context.Background(), models.DailyEntry{BatchID: "B1", MortalityCount: 49})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestRecordDailyEntryUpdateFailure(t *testing.T) {
	store := newMemStore(models.Batch{BatchID: "B1", LiveCount: 50})
	store.failApply = errors.New("connection reset")

	_, err := newTestService(store).RecordDailyEntry(context.Background(), models.DailyEntry{BatchID: "B1", MortalityCount: 1})
	assert.ErrorIs(t, err, store.failApply)
	assert.Empty(t, store.daily)
}

func TestRecordDailyEntrySaveFailureRestoresCounters(t *testing.T) {
	store := newMemStore(models.Batch{BatchID: "B1", InitialCount: 50, LiveCount: 50})
	store.failDaily = errors.New("disk full")

	_, err := newTestService(store).RecordDailyEntry(context.Background(), models.DailyEntry{BatchID: "B1", MortalityCount: 5})
	assert.ErrorIs(t, err, store.failDaily)

	batch := store.batches["B1"]
	assert.Equal(t, 50, batch.LiveCount)
	assert.Zero(t, batch.DeadCount)
	assert.Zero(t, batch.MortalityRate)
}

func TestMortalityWritesUpdateRate(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.CreateBatch(ctx, models.BatchInput{BatchID: "B1", HatchDate: fixedNow.AddDate(0, 0, -10), InitialCount: 100})
	require.NoError(t, err)
	assert.Equal(t, 100, store.batches["B1"].InitialCount)

	_, err = svc.RecordDailyEntry(ctx, models.DailyEntry{BatchID: "B1", MortalityCount: 10})
	require.NoError(t, err)

	batch := store.batches["B1"]
	assert.Equal(t, 90, batch.LiveCount)
	assert.InDelta(t, 10.0, batch.MortalityRate, 1e-9)
	assert.Equal(t, inventory.AlertCritical, inventory.AlertLevelFor(batch.MortalityRate))

	// Slaughtered birds leave the batch without raising the rate.
	_, err = svc.RecordSlaughter(ctx, models.SlaughterEntry{BatchID: "B1", HeadCount: 40, LiveWeightKg: 90, DressedWeight: 65})
	require.NoError(t, err)
	assert.Equal(t, 50, store.batches["B1"].LiveCount)
	assert.InDelta(t, 10.0, store.batches["B1"].MortalityRate, 1e-9)

	records, err := svc.Isolate(ctx, models.SickBirdEntry{BatchID: "B1", Count: 1, Symptoms: "gasping"})
	require.NoError(t, err)
	_, err = svc.ResolveCase(ctx, records[0].CaseID, models.BirdDead)
	require.NoError(t, err)

	batch = store.batches["B1"]
	assert.Equal(t, 49, batch.LiveCount)
	assert.Equal(t, 11, batch.DeadCount)
	assert.Zero(t, batch.IsolatedCount)
	assert.InDelta(t, 11.0, batch.MortalityRate, 1e-9)
}

func TestConcurrentDailyEntriesAllDeduct(t *testing.T) {
	store := newMemStore(models.Batch{BatchID: "B1", InitialCount: 100, LiveCount: 100})
	svc := newTestService(store)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordDailyEntry(context.Background(), models.DailyEntry{BatchID: "B1", MortalityCount: 2})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	batch := store.batches["B1"]
	assert.Equal(t, 60, batch.LiveCount)
	assert.Equal(t, 40, batch.DeadCount)
	assert.InDelta(t, 40.0, batch.MortalityRate, 1e-9)
	assert.Len(t, store.daily, 20)
}

func TestRecordDailyEntryLosesRace(t *testing.T) {
	store := newMemStore(models.Batch{BatchID: "B1", LiveCount: 3})
	store.failApply = models.ErrConflict

	_, err := newTestService(store).RecordDailyEntry(context.Background(), models.DailyEntry{BatchID: "B1", MortalityCount: 3})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestRecordSlaughterRespectsWithdrawal(t *testing.T) {
	future := fixedNow.Add(day)
	store := newMemStore(models.Batch{BatchID: "B1", LiveCount: 10, WithdrawalEndDate: &future})
	svc := newTestService(store)

	_, err := svc.RecordSlaughter(context.Background(), models.SlaughterEntry{BatchID: "B1", HeadCount: 1, LiveWeightKg: 2.5, DressedWeight: 1.8})
	assert.ErrorIs(t, err, ErrNotSlaughterReady)
	assert.Empty(t, store.slaughters)
}

func TestRecordSlaughterHealthyBirdsOnly(t *testing.T) {
	store := newMemStore(models.Batch{BatchID: "B1", LiveCount: 10, Status: models.BatchActive})
	store.treatments["C1"] = models.TreatmentRecord{CaseID: "C1", FlockID: "B1", Status: models.BirdIsolated}
	svc := newTestService(store)

	_, err := svc.RecordSlaughter(context.Background(), models.SlaughterEntry{BatchID: "B1", HeadCount: 10, LiveWeightKg: 25, DressedWeight: 18})
	assert.ErrorIs(t, err, ErrInvalidEntry)

	entry, err := svc.RecordSlaughter(context.Background(), models.SlaughterEntry{BatchID: "B1", HeadCount: 9, LiveWeightKg: 25, DressedWeight: 18})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, entry.Date)
	assert.Equal(t, 1, store.batches["B1"].LiveCount)
	assert.Equal(t, models.BatchActive, store.batches["B1"].Status)
}

func TestRecordSlaughterClosesEmptyBatch(t *testing.T) {
	store := newMemStore(models.Batch{BatchID: "B1", LiveCount: 4, Status: models.BatchActive})
	svc := newTestService(store)

	_, err := svc.RecordSlaughter(context.Background(), models.SlaughterEntry{BatchID: "B1", HeadCount: 4, LiveWeightKg: 10, DressedWeight: 7})
	require.NoError(t, err)
	assert.Equal(t, models.BatchClosed, store.batches["B1"].Status)
}

func TestRecordSlaughterRejectsHeavierDressedWeight(t *testing.T) {
	svc := newTestService(newMemStore(models.Batch{BatchID: "B1", LiveCount: 4}))
	_, err := svc.RecordSlaughter(context.Background(), models.SlaughterEntry{BatchID: "B1", HeadCount: 1, LiveWeightKg: 2, DressedWeight: 3})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}
