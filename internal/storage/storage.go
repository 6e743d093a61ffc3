// Package storage persists user profiles (the Discord to Steam link).
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lonely/internal/config"
)

var (
	ErrNotFound     = errors.New("profile not found")
	ErrInvalidInput = errors.New("invalid profile input")
)

type Profile struct {
	DiscordID string    `json:"discord_id"`
	SteamID   string    `json:"steam_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileStore is implemented by the datastore and sqlite backends.
type ProfileStore interface {
	// LinkSteam creates or updates the profile of discordID. created is
	// true when no profile existed before.
	LinkSteam(ctx context.Context, discordID, steamID string) (created bool, err error)
	Get(ctx context.Context, discordID string) (Profile, error)
	List(ctx context.Context) ([]Profile, error)
	Delete(ctx context.Context, discordID string) error
	Close() error
}

// Open picks the backend named by driver.
func Open(ctx context.Context, driver, path string) (ProfileStore, error) {
	switch driver {
	case config.StorageDatastore:
		return NewDatastore(path)
	case config.StorageSQLite:
		return NewSQLite(ctx, path)
	}
	return nil, fmt.Errorf("unknown storage driver %q", driver)
}

// ValidateSteamID accepts a steam32 account id: digits only.
func ValidateSteamID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: empty steam id", ErrInvalidInput)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: steam id must be numeric", ErrInvalidInput)
		}
	}
	return nil
}

func validate(discordID, steamID string) error {
	if discordID == "" {
		return fmt.Errorf("%w: empty discord id", ErrInvalidInput)
	}
	return ValidateSteamID(steamID)
}
