package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite keeps profiles in a sqlite database.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_timeout=5000", path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pragmas := []string{
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(initCtx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	if _, err := db.ExecContext(initCtx, `CREATE TABLE IF NOT EXISTS profiles (
		discord_id TEXT PRIMARY KEY,
		steam_id   TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create profiles table: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) LinkSteam(ctx context.Context, discordID, steamID string) (bool, error) {
	if err := validate(discordID, steamID); err != nil {
		return false, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx, "SELECT steam_id FROM profiles WHERE discord_id = ?", discordID).Scan(&existing)
	created := errors.Is(err, sql.ErrNoRows)
	if err != nil && !created {
		return false, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO profiles (discord_id, steam_id, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(discord_id) DO UPDATE SET steam_id = excluded.steam_id, updated_at = excluded.updated_at
	`, discordID, strings.TrimSpace(steamID), s.now().UTC()); err != nil {
		return false, err
	}
	return created, tx.Commit()
}

func (s *SQLite) Get(ctx context.Context, discordID string) (Profile, error) {
	p := Profile{DiscordID: discordID}
	err := s.db.QueryRowContext(ctx,
		"SELECT steam_id, updated_at FROM profiles WHERE discord_id = ?", discordID,
	).Scan(&p.SteamID, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, discordID)
	}
	return p, err
}

func (s *SQLite) List(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT discord_id, steam_id, updated_at FROM profiles ORDER BY discord_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.DiscordID, &p.SteamID, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLite) Delete(ctx context.Context, discordID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE discord_id = ?", discordID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, discordID)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
