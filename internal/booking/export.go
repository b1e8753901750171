package booking

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"table-planner/internal/planner/feed"
	"table-planner/internal/planner/models"

	"github.com/xuri/excelize/v2"
)

// ============================================================
// Export
// ============================================================

var ExportHeader = []string{
	"Name",
	"Email",
	"Phone",
	"Date",
	"Time",
	"Guests",
	"Status",
}

const exportSheet = "Reservations"

func exportRow(r models.Reservation, loc *time.Location) []string {
	d := r.Date.In(loc)
	return []string{
		r.CustomerName,
		r.CustomerEmail,
		r.CustomerPhone,
		d.Format("2006-01-02"),
		d.Format("15:04"),
		strconv.Itoa(r.PartySize),
		feed.StatusLabel(r.Status),
	}
}

// ExportCSV выгружает бронирования в CSV с заголовком.
func ExportCSV(rows []models.Reservation, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ExportHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(exportRow(r, loc)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportXLSX выгружает бронирования в Excel, одна строка на бронирование.
func ExportXLSX(rows []models.Reservation, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// единственный лист книги
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E2E8F0"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, 1, toCells(ExportHeader)); err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(ExportHeader), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, r := range rows {
		cells := toCells(exportRow(r, loc))
		cells[5] = r.PartySize
		if err := writeRow(f, i+2, cells); err != nil {
			return nil, err
		}
	}

	widths := []float64{24, 30, 14, 12, 8, 8, 12}
	for col, w := range widths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(exportSheet, name, name, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
