package profile

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"lonely/internal/commands"
	"lonely/internal/storage"
	"lonely/pkg/cmd"
)

func TestSteamID(t *testing.T) {
	store, err := storage.NewDatastore(filepath.Join(t.TempDir(), "profiles.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	c := &SteamIDCommand{Profiles: store}

	steps := []struct {
		args  []string
		reply string
	}{
		{nil, "<@42> You have not linked a Steam ID yet. Use `>steamid [Steam32 ID]`"},
		{[]string{"111"}, "<@42> Added Steam ID to be **111**"},
		{[]string{"222"}, "<@42> Successfully updated Steam ID to be **222**"},
		{nil, "<@42> Your Steam ID is **222**"},
		{[]string{"abc"}, "<@42> **abc** is not a valid Steam32 ID"},
	}
	for _, s := range steps {
		var reply string
		inv := &cmd.Invocation{Args: s.args, Data: &commands.MessageContext{
			AuthorID: "42",
			Prefix:   ">",
			Reply:    func(text string) error { reply = text; return nil },
		}}
		if err := c.Run(context.Background(), inv); err != nil {
			t.Fatalf("Run(%v): %v", s.args, err)
		}
		if reply != s.reply {
			t.Errorf("Run(%v) reply = %q, want %q", s.args, reply, s.reply)
		}
	}
}

type brokenStore struct{}

func (brokenStore) LinkSteam(context.Context, string, string) (bool, error) {
	return false, errors.New("disk full")
}

func (brokenStore) Get(context.Context, string) (storage.Profile, error) {
	return storage.Profile{}, errors.New("disk full")
}

func TestSteamIDStoreFailure(t *testing.T) {
	c := &SteamIDCommand{Profiles: brokenStore{}}
	for _, args := range [][]string{nil, {"1"}} {
		inv := &cmd.Invocation{Args: args, Data: &commands.MessageContext{
			AuthorID: "42",
			Reply:    func(string) error { return nil },
		}}
		if err := c.Run(context.Background(), inv); err == nil {
			t.Errorf("Run(%v) returned nil on a store failure", args)
		}
	}
}
