// Package prefs keeps the client-local part of a search session: recent searches
// and the last-used filters and sort order.
package prefs

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"corptravel/internal/flight"
	"corptravel/pkg/db"
	"corptravel/pkg/logger"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"

type SQLStore struct {
	db     db.SQLExecutor
	logger logger.Logger
}

func NewSQLStore(exec db.SQLExecutor, log logger.Logger) *SQLStore {
	return &SQLStore{db: exec, logger: log}
}

// Load returns the stored preferences, or defaults for an unknown client.
func (s *SQLStore) Load(ctx context.Context, clientID string) (flight.Preferences, error) {
	prefs := flight.Preferences{SortKey: flight.DefaultSortKey, RecentSearches: []flight.SearchRequest{}}

	var filters, sortKey string
	err := s.db.QueryRowContext(ctx,
		`SELECT filters, sort_key FROM client_preferences WHERE client_id = ?`, clientID,
	).Scan(&filters, &sortKey)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return prefs, fmt.Errorf("prefs: load %s: %w", clientID, err)
	default:
		if err := json.Unmarshal([]byte(filters), &prefs.Filters); err != nil {
			s.logger.Warn("discarding unreadable stored filters",
				logger.Field{Key: "client_id", Value: clientID}, logger.Err(err))
			prefs.Filters = flight.FilterState{}
		}
		if key := flight.SortKey(sortKey); key.Valid() {
			prefs.SortKey = key
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT request FROM recent_searches WHERE client_id = ? ORDER BY position`, clientID)
	if err != nil {
		return prefs, fmt.Errorf("prefs: load recent searches %s: %w", clientID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return prefs, fmt.Errorf("prefs: scan recent search: %w", err)
		}
		var req flight.SearchRequest
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			s.logger.Warn("skipping unreadable recent search",
				logger.Field{Key: "client_id", Value: clientID}, logger.Err(err))
			continue
		}
		prefs.RecentSearches = append(prefs.RecentSearches, req)
	}
	if err := rows.Err(); err != nil {
		return prefs, fmt.Errorf("prefs: iterate recent searches: %w", err)
	}
	return prefs, nil
}

// Save replaces everything stored for clientID in one transaction.
func (s *SQLStore) Save(ctx context.Context, clientID string, prefs flight.Preferences) error {
	filters, err := json.Marshal(prefs.Filters)
	if err != nil {
		return fmt.Errorf("prefs: encode filters: %w", err)
	}
	sortKey := prefs.SortKey
	if !sortKey.Valid() {
		sortKey = flight.DefaultSortKey
	}

	recent := make([]string, 0, len(prefs.RecentSearches))
	for _, req := range prefs.RecentSearches {
		raw, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("prefs: encode recent search: %w", err)
		}
		recent = append(recent, string(raw))
	}

	return s.db.WithTransaction(ctx, sql.LevelDefault, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO client_preferences (client_id, filters, sort_key, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (client_id) DO UPDATE SET
				filters = excluded.filters,
				sort_key = excluded.sort_key,
				updated_at = excluded.updated_at`,
			clientID, string(filters), string(sortKey),
		); err != nil {
			return fmt.Errorf("prefs: upsert preferences: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM recent_searches WHERE client_id = ?`, clientID); err != nil {
			return fmt.Errorf("prefs: clear recent searches: %w", err)
		}
		for i, raw := range recent {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO recent_searches (client_id, position, request) VALUES (?, ?, ?)`,
				clientID, i, raw,
			); err != nil {
				return fmt.Errorf("prefs: insert recent search: %w", err)
			}
		}
		return nil
	})
}
