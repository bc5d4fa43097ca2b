// Package export renders bookings as an Excel workbook for the admin.
package export

import (
	"fmt"
	"io"
	"time"

	"bookingpro/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetConfirmed = "Активные"
	SheetCancelled = "Отменённые"
)

var columns = []string{"ID", "Дата", "Время", "Клиент", "Telegram", "Услуга", "Цена", "Длительность, мин", "Создано", "Отменено"}

// Writer fills an excelize workbook sheet by sheet.
type Writer struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func NewWriter() *Writer {
	return &Writer{file: excelize.NewFile()}
}

// AddSheet adds a new sheet with the given name.
func (w *Writer) AddSheet(name string) error {
	// Excel limit
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}

	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes bold column headers to the current sheet.
func (w *Writer) WriteHeader(cols []string) error {
	if err := w.WriteRow(toAny(cols)); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow-1)
		endCell, _ := excelize.CoordinatesToCellName(len(cols), w.currentRow-1)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}
	return nil
}

// WriteRow writes a data row to the current sheet.
func (w *Writer) WriteRow(row []any) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}

	w.currentRow++
	return nil
}

func (w *Writer) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

func (w *Writer) Close() error {
	return w.file.Close()
}

// Bookings writes confirmed and cancelled bookings to separate sheets.
func Bookings(wr io.Writer, bookings []models.Booking, loc *time.Location) error {
	w := NewWriter()
	defer w.Close()

	for _, sheet := range []struct {
		name   string
		status string
	}{
		{SheetConfirmed, models.StatusConfirmed},
		{SheetCancelled, models.StatusCancelled},
	} {
		if err := w.AddSheet(sheet.name); err != nil {
			return err
		}
		if err := w.WriteHeader(columns); err != nil {
			return err
		}
		for i := range bookings {
			b := &bookings[i]
			if b.Status != sheet.status {
				continue
			}
			if err := w.WriteRow(row(b, loc)); err != nil {
				return fmt.Errorf("booking %s: %w", b.ID, err)
			}
		}
	}
	return w.Save(wr)
}

// Filename is the attachment name for an export made at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("bookings_%s.xlsx", t.Format("2006-01-02"))
}

func row(b *models.Booking, loc *time.Location) []any {
	cancelled := ""
	if b.CancelledAt != nil {
		cancelled = b.CancelledAt.In(loc).Format("2006-01-02 15:04")
	}
	username := ""
	if b.TelegramUsername != "" {
		username = "@" + b.TelegramUsername
	}
	return []any{
		b.ID, b.Date, b.Time, b.ClientName, username, b.Service, b.Price, b.Duration,
		b.CreatedAt.In(loc).Format("2006-01-02 15:04"), cancelled,
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
