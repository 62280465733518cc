package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MagetoJ/AviTrack/internal/service/inventory"
)

const (
	inventorySheet = "Inventory"
	issuesSheet    = "Data Issues"
	dateLayout     = "2006-01-02"
)

var inventoryHeadings = []string{
	"Batch ID", "Breed", "Location", "Days Old", "Live Count", "Active Isolations",
	"Healthy Count", "Mortality Rate (%)", "FCR", "Status", "Medication Status",
	"Withdrawal Ends", "Slaughter Ready",
}

// WriteInventory renders a derived inventory as an XLSX workbook.
func WriteInventory(w io.Writer, res inventory.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeRow(f, inventorySheet, 1, toCells(inventoryHeadings)); err != nil {
		return err
	}

	for i, b := range res.Batches {
		withdrawal := ""
		if b.WithdrawalEndDate != nil {
			withdrawal = b.WithdrawalEndDate.Format(dateLayout)
		}
		row := []interface{}{
			b.BatchID, b.Breed, b.Location, b.DaysOld, b.LiveCount, b.ActiveIsolations,
			b.HealthyCount, b.MortalityRate, b.FCR, string(b.Status), b.MedicationStatus,
			withdrawal, yesNo(b.SlaughterReady),
		}
		if err := writeRow(f, inventorySheet, i+2, row); err != nil {
			return err
		}
	}

	if len(res.Unmatched) > 0 || len(res.Overdrawn) > 0 {
		if _, err := f.NewSheet(issuesSheet); err != nil {
			return fmt.Errorf("create issues sheet: %w", err)
		}
		if err := writeRow(f, issuesSheet, 1, []interface{}{"Kind", "Reference"}); err != nil {
			return err
		}
		rowNo := 2
		for _, id := range res.Unmatched {
			if err := writeRow(f, issuesSheet, rowNo, []interface{}{"Unmatched treatment case", id}); err != nil {
				return err
			}
			rowNo++
		}
		for _, id := range res.Overdrawn {
			if err := writeRow(f, issuesSheet, rowNo, []interface{}{"Isolations exceed live count", id}); err != nil {
				return err
			}
			rowNo++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNo int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d of %s: %w", rowNo, sheet, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
