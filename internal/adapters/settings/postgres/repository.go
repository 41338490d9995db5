package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"3tcapital/ms_admision_facturas/internal/core/sequence"
	"3tcapital/ms_admision_facturas/internal/core/settings"
	"3tcapital/ms_admision_facturas/internal/infrastructure/cache"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements the settings.Store interface using PostgreSQL with a
// small TTL cache in front. The active fiscal year is invalidated on every
// write so rollover is visible immediately.
type Store struct {
	pool  *pgxpool.Pool
	cache *cache.SettingsCache
}

// NewStore creates a new PostgreSQL settings store.
func NewStore(pool *pgxpool.Pool, settingsCache *cache.SettingsCache) settings.Store {
	return &Store{pool: pool, cache: settingsCache}
}

// ActiveFiscalYear returns the fiscal year admissions are recorded against.
func (s *Store) ActiveFiscalYear(ctx context.Context) (string, error) {
	return s.get(ctx, settings.KeyFiscalYear)
}

// SetActiveFiscalYear repoints the active fiscal year and invalidates its
// cache entry.
func (s *Store) SetActiveFiscalYear(ctx context.Context, year string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE app_settings SET value = $1, fecha_modificacion = NOW() WHERE key = $2`,
		year, settings.KeyFiscalYear,
	)
	if err != nil {
		return fmt.Errorf("set active fiscal year: %w", err)
	}

	s.cache.Invalidate(settings.KeyFiscalYear)
	return nil
}

// Format returns the sequential number format.
func (s *Store) Format(ctx context.Context) (sequence.Format, error) {
	raw, err := s.get(ctx, settings.KeyCmdtFormat)
	if err != nil {
		return sequence.Format{}, err
	}

	var format sequence.Format
	if err := json.Unmarshal([]byte(raw), &format); err != nil {
		return sequence.Format{}, fmt.Errorf("%w: malformed %s value", settings.ErrNotFound, settings.KeyCmdtFormat)
	}
	return format, nil
}

// AutoYearSwitch reports whether automatic rollover is enabled.
func (s *Store) AutoYearSwitch(ctx context.Context) (bool, error) {
	raw, err := s.get(ctx, settings.KeyAutoYearSwitch)
	if err != nil {
		return false, err
	}

	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: malformed %s value", settings.ErrNotFound, settings.KeyAutoYearSwitch)
	}
	return enabled, nil
}

// WarningThreshold returns the remaining-capacity warning level.
func (s *Store) WarningThreshold(ctx context.Context) (int, error) {
	raw, err := s.get(ctx, settings.KeyWarningThreshold)
	if err != nil {
		return 0, err
	}

	threshold, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed %s value", settings.ErrNotFound, settings.KeyWarningThreshold)
	}
	return threshold, nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	if value, ok := s.cache.Get(key); ok {
		return value, nil
	}

	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM app_settings WHERE key = $1`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", settings.ErrNotFound, key)
		}
		return "", fmt.Errorf("query setting %s: %w", key, err)
	}

	s.cache.Set(key, value)
	return value, nil
}
