package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"glowbook/internal/models"
)

const serviceColumns = `id, title, description, service_type, duration_minutes, price, currency,
        category, capacity, deposit_policy, active, tags, metadata, created_at, updated_at`

// UpsertService inserts or replaces a catalog entry by id.
func (s *Store) UpsertService(ctx context.Context, svc *models.Service) error {
	tags, err := json.Marshal(svc.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	metadata, err := json.Marshal(svc.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	query := `
        INSERT INTO services (` + serviceColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            title = excluded.title,
            description = excluded.description,
            service_type = excluded.service_type,
            duration_minutes = excluded.duration_minutes,
            price = excluded.price,
            currency = excluded.currency,
            category = excluded.category,
            capacity = excluded.capacity,
            deposit_policy = excluded.deposit_policy,
            active = excluded.active,
            tags = excluded.tags,
            metadata = excluded.metadata,
            updated_at = excluded.updated_at
    `

	_, err = s.db.ExecContext(ctx, query,
		svc.ID,
		svc.Title,
		svc.Description,
		svc.ServiceType,
		svc.DurationMinutes,
		svc.Price,
		svc.Currency,
		svc.Category,
		svc.Capacity,
		svc.DepositPolicy,
		svc.Active,
		string(tags),
		string(metadata),
		svc.CreatedAt,
		svc.UpdatedAt,
	)
	return err
}

// ReplaceServices mirrors a remote catalog fetch: the records matching
// serviceType (all records when empty) are fully replaced by the given set.
func (s *Store) ReplaceServices(ctx context.Context, serviceType string, services []models.Service) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace services: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if serviceType == "" {
		if _, err := tx.ExecContext(ctx, `DELETE FROM services`); err != nil {
			return fmt.Errorf("clear services: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `DELETE FROM services WHERE service_type = ?`, serviceType); err != nil {
			return fmt.Errorf("clear services of type %s: %w", serviceType, err)
		}
	}

	insert := `
        INSERT INTO services (` + serviceColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	for i := range services {
		svc := &services[i]
		tags, err := json.Marshal(svc.Tags)
		if err != nil {
			return fmt.Errorf("encode tags: %w", err)
		}
		metadata, err := json.Marshal(svc.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insert,
			svc.ID, svc.Title, svc.Description, svc.ServiceType, svc.DurationMinutes,
			svc.Price, svc.Currency, svc.Category, svc.Capacity, svc.DepositPolicy,
			svc.Active, string(tags), string(metadata), svc.CreatedAt, svc.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert service %s: %w", svc.ID, err)
		}
	}

	return tx.Commit()
}

// GetServices returns cached catalog entries, optionally filtered by type.
func (s *Store) GetServices(ctx context.Context, serviceType string) ([]models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	var args []interface{}
	if serviceType != "" {
		query += ` WHERE service_type = ?`
		args = append(args, serviceType)
	}
	query += ` ORDER BY category, title`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *svc)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return services, nil
}

// GetServiceByID returns a cached catalog entry or (nil, nil) when absent.
func (s *Store) GetServiceByID(ctx context.Context, id string) (*models.Service, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ?`, id)
	svc, err := scanService(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanService(r rowScanner) (*models.Service, error) {
	var svc models.Service
	var tags, metadata sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := r.Scan(
		&svc.ID,
		&svc.Title,
		&svc.Description,
		&svc.ServiceType,
		&svc.DurationMinutes,
		&svc.Price,
		&svc.Currency,
		&svc.Category,
		&svc.Capacity,
		&svc.DepositPolicy,
		&svc.Active,
		&tags,
		&metadata,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tags.Valid && tags.String != "" && tags.String != "null" {
		if err := json.Unmarshal([]byte(tags.String), &svc.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", svc.ID, err)
		}
	}
	if metadata.Valid && metadata.String != "" && metadata.String != "null" {
		if err := json.Unmarshal([]byte(metadata.String), &svc.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", svc.ID, err)
		}
	}
	if createdAt.Valid {
		svc.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		svc.UpdatedAt = updatedAt.Time
	}

	return &svc, nil
}
