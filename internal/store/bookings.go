package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"glowbook/internal/domain"
	"glowbook/internal/models"
)

const bookingColumns = `id, service_id, user_id, client_name, client_phone, client_email,
        date, start_time, end_time, amount, currency, deposit, status, payment_status,
        external_booking_id, external_source, synced, created_at, updated_at`

// UpsertBooking inserts or replaces a booking by id. Last writer wins.
func (s *Store) UpsertBooking(ctx context.Context, b *models.Booking) error {
	query := `
        INSERT INTO bookings (` + bookingColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            service_id = excluded.service_id,
            user_id = excluded.user_id,
            client_name = excluded.client_name,
            client_phone = excluded.client_phone,
            client_email = excluded.client_email,
            date = excluded.date,
            start_time = excluded.start_time,
            end_time = excluded.end_time,
            amount = excluded.amount,
            currency = excluded.currency,
            deposit = excluded.deposit,
            status = excluded.status,
            payment_status = excluded.payment_status,
            external_booking_id = excluded.external_booking_id,
            external_source = excluded.external_source,
            synced = excluded.synced,
            updated_at = excluded.updated_at
    `

	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, query,
		b.ID, b.ServiceID, b.UserID, b.ClientName, b.ClientPhone, b.ClientEmail,
		b.Date, b.StartTime, b.EndTime, b.Amount, b.Currency, b.Deposit,
		b.Status, b.PaymentStatus, b.ExternalBookingID, b.ExternalSource,
		b.Synced, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// GetBooking returns a booking by id or (nil, nil) when absent.
func (s *Store) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetUserBookings returns all of a user's bookings, newest first.
func (s *Store) GetUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetAllBookings returns every cached booking, newest first.
func (s *Store) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetUnsyncedBookings returns locally-created bookings awaiting remote
// confirmation, oldest first.
func (s *Store) GetUnsyncedBookings(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE synced = 0 ORDER BY created_at ASC, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBookings(rows)
}

// MarkBookingSynced rewrites a local booking's id to the server-assigned one
// and flips the synced flag. The local id no longer resolves afterwards.
func (s *Store) MarkBookingSynced(ctx context.Context, localID, serverID string) error {
	query := `UPDATE bookings SET id = ?, synced = 1, updated_at = ? WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query, serverID, time.Now(), localID)
	if err != nil {
		return fmt.Errorf("mark booking %s synced: %w", localID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("booking %s: %w", localID, domain.ErrNotFound)
	}
	return nil
}

// UpdateBookingStatus sets the booking status.
func (s *Store) UpdateBookingStatus(ctx context.Context, id, status string) error {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`

	_, err := s.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

func collectBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

func scanBooking(r rowScanner) (*models.Booking, error) {
	var b models.Booking
	var extID, extSource sql.NullString

	err := r.Scan(
		&b.ID,
		&b.ServiceID,
		&b.UserID,
		&b.ClientName,
		&b.ClientPhone,
		&b.ClientEmail,
		&b.Date,
		&b.StartTime,
		&b.EndTime,
		&b.Amount,
		&b.Currency,
		&b.Deposit,
		&b.Status,
		&b.PaymentStatus,
		&extID,
		&extSource,
		&b.Synced,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.ExternalBookingID = extID.String
	b.ExternalSource = extSource.String
	return &b, nil
}
