package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"lonely/datastore"
)

const profileKeyPrefix = "profile:"

// Datastore keeps profiles in the JSON file store, one key per user.
type Datastore struct {
	ds *datastore.DataStore
	// serialises read-modify-write of a profile
	mu  sync.Mutex
	now func() time.Time
}

func NewDatastore(path string) (*Datastore, error) {
	ds, err := datastore.New(path)
	if err != nil {
		return nil, err
	}
	return &Datastore{ds: ds, now: time.Now}, nil
}

func (s *Datastore) LinkSteam(_ context.Context, discordID, steamID string) (bool, error) {
	if err := validate(discordID, steamID); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var p Profile
	found, err := s.ds.Get(profileKeyPrefix+discordID, &p)
	if err != nil {
		return false, err
	}
	p.DiscordID = discordID
	p.SteamID = strings.TrimSpace(steamID)
	p.UpdatedAt = s.now().UTC()
	if err := s.ds.Put(profileKeyPrefix+discordID, p); err != nil {
		return false, err
	}
	return !found, nil
}

func (s *Datastore) Get(_ context.Context, discordID string) (Profile, error) {
	var p Profile
	found, err := s.ds.Get(profileKeyPrefix+discordID, &p)
	if err != nil {
		return Profile{}, err
	}
	if !found {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, discordID)
	}
	return p, nil
}

func (s *Datastore) List(ctx context.Context) ([]Profile, error) {
	var out []Profile
	for _, key := range s.ds.Keys() {
		id, ok := strings.CutPrefix(key, profileKeyPrefix)
		if !ok {
			continue
		}
		p, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Datastore) Delete(ctx context.Context, discordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.Get(ctx, discordID); err != nil {
		return err
	}
	return s.ds.Delete(profileKeyPrefix + discordID)
}

func (s *Datastore) Close() error {
	return s.ds.Close()
}
