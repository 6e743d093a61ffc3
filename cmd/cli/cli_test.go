package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"lonely/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestProfileCommands(t *testing.T) {
	for _, driver := range []string{"datastore", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			store := []string{"--driver", driver, "--path", filepath.Join(t.TempDir(), "profiles")}
			with := func(args ...string) []string { return append(append([]string{}, args...), store...) }

			out, err := run(t, with("profile", "link", "42", "111")...)
			if err != nil || !strings.Contains(out, "added 42 -> 111") {
				t.Fatalf("link: %q, %v", out, err)
			}
			out, err = run(t, with("profile", "link", "42", "222")...)
			if err != nil || !strings.Contains(out, "updated 42 -> 222") {
				t.Fatalf("relink: %q, %v", out, err)
			}
			out, err = run(t, with("profile", "get", "42")...)
			if err != nil || !strings.Contains(out, "222") {
				t.Fatalf("get: %q, %v", out, err)
			}
			out, err = run(t, with("profile", "list")...)
			if err != nil || !strings.Contains(out, "1 profile(s)") {
				t.Fatalf("list: %q, %v", out, err)
			}
			if _, err := run(t, with("profile", "delete", "42")...); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := run(t, with("profile", "get", "42")...); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("get after delete err = %v", err)
			}
		})
	}
}

func TestProfileLinkRejectsBadID(t *testing.T) {
	_, err := run(t, "profile", "link", "42", "abc", "--path", filepath.Join(t.TempDir(), "p.json"), "--driver", "datastore")
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("err = %v", err)
	}
}
