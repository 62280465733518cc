package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
)

type fakeRepo struct {
	ranges  map[string][][]interface{}
	written map[string][][]interface{}
	err     error
}

func (f *fakeRepo) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.ranges[sheetRange], nil
}

func (f *fakeRepo) WriteRow(_ context.Context, sheetRange string, values []interface{}) error {
	if f.written == nil {
		f.written = map[string][][]interface{}{}
	}
	f.written[sheetRange] = append(f.written[sheetRange], values)
	return nil
}

func TestListBatches(t *testing.T) {
	repo := &fakeRepo{ranges: map[string][][]interface{}{
		batchesRange: {
			{"B-101", "Cobb 500", "2026-01-10", "32", "House A", "4,850", "12", "1.2%", "1.85", "active", "TRUE", "2026-02-20"},
			{"B-102", "Ross 308", "2026-01-20", "22", "House B", "5000"},
			{"", "missing id", "", "", "", "10"},
			{"B-103", "Hubbard", "not a date", "", "", "10"},
			{"B-104", "short row"},
		},
	}}

	batches, err := NewSource(repo, nil).ListBatches(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 2)

	b := batches[0]
	assert.Equal(t, "B-101", b.BatchID)
	assert.Equal(t, 4850, b.LiveCount)
	assert.Equal(t, 12, b.IsolatedCount)
	assert.Equal(t, 1.2, b.MortalityRate)
	assert.Equal(t, 1.85, b.FCR)
	assert.True(t, b.MedicationActive)
	require.NotNil(t, b.WithdrawalEndDate)
	assert.Equal(t, time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC), *b.WithdrawalEndDate)

	assert.Equal(t, models.BatchActive, batches[1].Status)
	assert.Nil(t, batches[1].WithdrawalEndDate)
	assert.False(t, batches[1].MedicationActive)
}

func TestListBatchesRejectsUnknownStatus(t *testing.T) {
	repo := &fakeRepo{ranges: map[string][][]interface{}{
		batchesRange: {
			{"B-201", "Cobb 500", "2026-01-10", "32", "House A", "100", "0", "", "", "Closed"},
			{"B-202", "Cobb 500", "2026-01-10", "32", "House A", "100", "0", "", "", "archived"},
			{"B-203", "Cobb 500", "2026-01-10", "32", "House A", "100", "0", "", "", "ACTIVE"},
		},
	}}

	batches, err := NewSource(repo, nil).ListBatches(context.Background())
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "B-201", batches[0].BatchID)
	assert.Equal(t, models.BatchClosed, batches[0].Status)
	assert.Equal(t, "B-203", batches[1].BatchID)
	assert.Equal(t, models.BatchActive, batches[1].Status)
}

func TestParseBatchStatus(t *testing.T) {
	s, err := parseBatchStatus("closed")
	require.NoError(t, err)
	assert.Equal(t, models.BatchClosed, s)

	_, err = parseBatchStatus("pending")
	assert.Error(t, err)
}

func TestListTreatments(t *testing.T) {
	repo := &fakeRepo{ranges: map[string][][]interface{}{
		treatmentsRange: {
			{"TR-1", "B-101", "coughing, lethargy", "Tylosin", "1g/L", "2026-02-10", "", "", "5", "isolated"},
			{"TR-2", "B-101", "", "", "", "2026-02-01", "2026-02-08", "", "3", "Recovered"},
			{"TR-3", "B-999"},
			{"TR-4", "B-101", "", "", "", "", "", "", "", "sleeping"},
		},
	}}

	records, err := NewSource(repo, nil).ListTreatments(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"coughing", "lethargy"}, records[0].Symptoms)
	assert.Equal(t, models.BirdIsolated, records[0].Status)
	assert.Equal(t, 5, records[0].WithdrawalPeriodDays)

	assert.Equal(t, models.BirdRecovered, records[1].Status)
	require.NotNil(t, records[1].RecoveryDate)
	assert.Nil(t, records[1].MortalityDate)

	assert.Equal(t, "B-999", records[2].FlockID)
	assert.Equal(t, models.BirdIsolated, records[2].Status, "status defaults to isolated")
}

func TestSourcePropagatesReadErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	src := NewSource(&fakeRepo{err: boom}, nil)

	_, err := src.ListBatches(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = src.ListTreatments(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestAppendReport(t *testing.T) {
	repo := &fakeRepo{}
	eff := 87.5
	report := models.FlockHealthReport{
		Date:             time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC),
		Batches:          2,
		LiveBirds:        300,
		HealthyBirds:     295,
		ActiveIsolations: 5,
		UnderTreatment:   []string{"B1", "B2"},
		StaffEfficiency:  &eff,
	}

	require.NoError(t, NewSource(repo, nil).AppendReport(context.Background(), report))
	require.Len(t, repo.written[reportsRange], 1)
	assert.Equal(t, []interface{}{"2026-03-01", 2, 300, 295, 5, "B1, B2", "", "87.5"}, repo.written[reportsRange][0])
}
