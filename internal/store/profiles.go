package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"glowbook/internal/models"
)

// UpsertProfile inserts or replaces the user profile.
func (s *Store) UpsertProfile(ctx context.Context, p *models.Profile) error {
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	query := `
        INSERT INTO profiles (user_id, name, phone, email, preferences, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(user_id) DO UPDATE SET
            name = excluded.name,
            phone = excluded.phone,
            email = excluded.email,
            preferences = excluded.preferences,
            updated_at = excluded.updated_at
    `

	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, query, p.UserID, p.Name, p.Phone, p.Email, string(prefs), p.UpdatedAt)
	return err
}

// GetProfile returns a profile by user id or (nil, nil) when absent.
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT user_id, name, phone, email, preferences, updated_at FROM profiles WHERE user_id = ?`

	var p models.Profile
	var prefs sql.NullString
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.Name, &p.Phone, &p.Email, &prefs, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if prefs.Valid && prefs.String != "" && prefs.String != "null" {
		if err := json.Unmarshal([]byte(prefs.String), &p.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences for %s: %w", userID, err)
		}
	}

	return &p, nil
}

// SetPreference stores a single user preference key.
func (s *Store) SetPreference(ctx context.Context, userID, key, value string) error {
	query := `
        INSERT INTO user_preferences (user_id, key, value, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(user_id, key) DO UPDATE SET
            value = excluded.value,
            updated_at = excluded.updated_at
    `

	_, err := s.db.ExecContext(ctx, query, userID, key, value, time.Now())
	return err
}

// GetPreference returns a preference value and whether it exists.
func (s *Store) GetPreference(ctx context.Context, userID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM user_preferences WHERE user_id = ? AND key = ?`, userID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
