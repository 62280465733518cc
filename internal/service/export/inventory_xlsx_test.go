package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
	"github.com/MagetoJ/AviTrack/internal/service/inventory"
)

func TestWriteInventory(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 0, 3)
	res := inventory.Calculate(
		[]models.Batch{
			{BatchID: "B1", Breed: "Cobb 500", LiveCount: 100, WithdrawalEndDate: &end},
			{BatchID: "B2", Breed: "Ross 308", LiveCount: 1},
		},
		[]models.TreatmentRecord{
			{CaseID: "C1", FlockID: "B1", Status: models.BirdIsolated},
			{CaseID: "C2", FlockID: "B2", Status: models.BirdIsolated},
			{CaseID: "C3", FlockID: "B2", Status: models.BirdIsolated},
			{CaseID: "C4", FlockID: "B5", Status: models.BirdIsolated},
		},
		now,
	)

	var buf bytes.Buffer
	require.NoError(t, WriteInventory(&buf, res))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(inventorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Batch ID", rows[0][0])
	assert.Equal(t, []string{"B1", "Cobb 500", "", "0", "100", "1", "99", "0", "0", "", "Under Treatment", "2026-05-04", "No"}, rows[1])
	assert.Equal(t, "-1", rows[2][6])

	issues, err := f.GetRows(issuesSheet)
	require.NoError(t, err)
	require.Len(t, issues, 3)
	assert.Equal(t, "C4", issues[1][1])
	assert.Equal(t, "B2", issues[2][1])
}

func TestWriteInventoryWithoutIssues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInventory(&buf, inventory.Result{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{inventorySheet}, f.GetSheetList())
}
