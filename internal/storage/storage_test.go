package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"lonely/internal/config"
)

func TestValidateSteamID(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"123456", false},
		{" 42 ", false},
		{"", true},
		{"   ", true},
		{"12a4", true},
		{"-1", true},
		{"STEAM_0:1:2", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := ValidateSteamID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateSteamID(%q) = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestProfileStores(t *testing.T) {
	for _, driver := range []string{config.StorageDatastore, config.StorageSQLite} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			s, err := Open(ctx, driver, filepath.Join(t.TempDir(), "profiles.db"))
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()

			created, err := s.LinkSteam(ctx, "42", "111")
			if err != nil || !created {
				t.Fatalf("first LinkSteam = %v, %v; want created", created, err)
			}
			created, err = s.LinkSteam(ctx, "42", " 222 ")
			if err != nil || created {
				t.Fatalf("second LinkSteam = %v, %v; want updated", created, err)
			}
			p, err := s.Get(ctx, "42")
			if err != nil || p.SteamID != "222" || p.DiscordID != "42" {
				t.Fatalf("Get = %+v, %v", p, err)
			}

			if _, err := s.LinkSteam(ctx, "43", "abc"); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("bad steam id err = %v", err)
			}
			if _, err := s.LinkSteam(ctx, "", "1"); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("empty discord id err = %v", err)
			}

			all, err := s.List(ctx)
			if err != nil || len(all) != 1 {
				t.Fatalf("List = %+v, %v", all, err)
			}

			if err := s.Delete(ctx, "42"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, "42"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete err = %v", err)
			}
			if err := s.Delete(ctx, "42"); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete err = %v", err)
			}
		})
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "postgres", t.TempDir()); err == nil {
		t.Fatal("expected an error")
	}
}
