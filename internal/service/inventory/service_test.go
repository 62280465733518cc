package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
)

type fakeSource struct {
	batches    []models.Batch
	treatments []models.TreatmentRecord
	batchErr   error
	treatErr   error
}

func (f *fakeSource) ListBatches(context.Context) ([]models.Batch, error) {
	return f.batches, f.batchErr
}

func (f *fakeSource) ListTreatments(context.Context) ([]models.TreatmentRecord, error) {
	return f.treatments, f.treatErr
}

type recordingRecorder struct {
	batches, unmatched, overdrawn int
	calls                         int
}

func (r *recordingRecorder) ObserveDerivation(batches, unmatched, overdrawn int) {
	r.calls++
	r.batches, r.unmatched, r.overdrawn = batches, unmatched, overdrawn
}

func TestSnapshotAtDerivesFromSource(t *testing.T) {
	src := &fakeSource{
		batches: []models.Batch{{BatchID: "B1", LiveCount: 1}, {BatchID: "B2", LiveCount: 4}},
		treatments: []models.TreatmentRecord{
			isolated("C1", "B1"), isolated("C2", "B1"), isolated("C3", "B7"),
		},
	}
	rec := &recordingRecorder{}
	svc := NewService(src, rec, nil)

	res, err := svc.SnapshotAt(context.Background(), evalTime)
	require.NoError(t, err)

	require.Len(t, res.Batches, 2)
	assert.Equal(t, -1, res.Batches[0].HealthyCount)
	assert.Equal(t, 4, res.Batches[1].HealthyCount)
	assert.Equal(t, []string{"C3"}, res.Unmatched)
	assert.Equal(t, []string{"B1"}, res.Overdrawn)

	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, 2, rec.batches)
	assert.Equal(t, 1, rec.unmatched)
	assert.Equal(t, 1, rec.overdrawn)
}

func TestSnapshotUsesInjectedClock(t *testing.T) {
	end := evalTime.Add(time.Hour)
	src := &fakeSource{batches: []models.Batch{{BatchID: "B1", LiveCount: 5, WithdrawalEndDate: &end}}}
	svc := NewService(src, nil, nil)

	svc.now = func() time.Time { return evalTime }
	res, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Batches[0].SlaughterReady)

	svc.now = func() time.Time { return evalTime.Add(2 * time.Hour) }
	res, err = svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Batches[0].SlaughterReady)
}

func TestSnapshotPropagatesSourceErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewService(&fakeSource{batchErr: boom}, nil, nil).SnapshotAt(context.Background(), evalTime)
	assert.ErrorIs(t, err, boom)

	_, err = NewService(&fakeSource{treatErr: boom}, nil, nil).SnapshotAt(context.Background(), evalTime)
	assert.ErrorIs(t, err, boom)
}
