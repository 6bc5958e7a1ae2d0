package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"glowbook/internal/models"
	"glowbook/internal/store"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "Bookings"

// Exporter writes snapshots of the locally-cached booking state to Excel
// files, for support staff working from the device's own view of the data.
type Exporter struct {
	store  *store.Store
	path   string
	logger zerolog.Logger
}

func New(st *store.Store, path string, logger zerolog.Logger) *Exporter {
	return &Exporter{
		store:  st,
		path:   path,
		logger: logger.With().Str("component", "export").Logger(),
	}
}

// Start writes a daily snapshot until ctx is done.
func (e *Exporter) Start(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.ExportBookings(ctx); err != nil {
				e.logger.Error().Err(err).Msg("scheduled export failed")
			}
		}
	}
}

// ExportBookings writes all cached bookings, sync state included, to an
// xlsx file and returns its path.
func (e *Exporter) ExportBookings(ctx context.Context) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	bookings, err := e.store.GetAllBookings(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Service", "Date", "Start", "End", "Client", "Phone",
		"Amount", "Currency", "Status", "Payment", "Synced", "Created",
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bookingsSheet, cell, header)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, headerStyle)
	}

	for row, b := range bookings {
		values := []interface{}{
			b.ID,
			b.ServiceID,
			b.Date.Format("2006-01-02"),
			b.StartTime,
			b.EndTime,
			b.ClientName,
			b.ClientPhone,
			float64(b.Amount) / 100,
			b.Currency,
			b.Status,
			b.PaymentStatus,
			syncedLabel(&b),
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(bookingsSheet, cell, v)
		}
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 38)
	_ = f.SetColWidth(bookingsSheet, "B", "M", 16)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("bookings export created")
	return filePath, nil
}

func syncedLabel(b *models.Booking) string {
	if b.Synced {
		return "yes"
	}
	return "pending sync"
}
