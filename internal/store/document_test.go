package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

type entry struct {
	Name    string `json:"name"`
	AddedAt int64  `json:"addedAt"`
}

func TestLoadDocument(t *testing.T) {
	t.Run("Absent Key", func(t *testing.T) {
		items, err := LoadDocument[entry](NewMemory(0), FavoritesKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if items == nil || len(items) != 0 {
			t.Errorf("expected empty non-nil map, got %v", items)
		}
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		for _, raw := range []string{"not json", "[1,2,3]", `"text"`, `{"a":`} {
			s := NewMemory(0)
			s.Write(FavoritesKey, raw)

			items, err := LoadDocument[entry](s, FavoritesKey)
			if !errors.Is(err, ErrCorruptDocument) {
				t.Errorf("%q: expected ErrCorruptDocument, got %v", raw, err)
			}
			if len(items) != 0 {
				t.Errorf("%q: expected empty map, got %v", raw, items)
			}
		}
	})

	t.Run("Bare Object Migrates", func(t *testing.T) {
		s := NewMemory(0)
		s.Write(FavoritesKey, `{"a":{"name":"A","addedAt":1},"b":{"name":"B","addedAt":2},"junk":7}`)

		items, err := LoadDocument[entry](s, FavoritesKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 2 || items["a"].Name != "A" || items["b"].AddedAt != 2 {
			t.Errorf("unexpected items: %+v", items)
		}
	})

	t.Run("Envelope", func(t *testing.T) {
		s := NewMemory(0)
		s.Write(FavoritesKey, `{"version":1,"items":{"a":{"name":"A","addedAt":5}}}`)

		items, err := LoadDocument[entry](s, FavoritesKey)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if items["a"].AddedAt != 5 {
			t.Errorf("unexpected items: %+v", items)
		}
	})

	t.Run("Newer Version", func(t *testing.T) {
		s := NewMemory(0)
		s.Write(FavoritesKey, `{"version":99,"items":{}}`)

		if _, err := LoadDocument[entry](s, FavoritesKey); !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("expected ErrUnsupportedVersion, got %v", err)
		}
	})

	t.Run("Malformed Entry Skipped", func(t *testing.T) {
		s := NewMemory(0)
		s.Write(FavoritesKey, `{"version":1,"items":{"a":{"name":"A"},"b":{"name":42}}}`)

		items, err := LoadDocument[entry](s, FavoritesKey)
		if !errors.Is(err, ErrCorruptDocument) {
			t.Errorf("expected ErrCorruptDocument, got %v", err)
		}
		if len(items) != 1 || items["a"].Name != "A" {
			t.Errorf("expected the valid entry to survive, got %+v", items)
		}
	})

	t.Run("Migration Hook", func(t *testing.T) {
		original := Migrations[0]
		t.Cleanup(func() { Migrations[0] = original })

		called := false
		Migrations[0] = func(key string, items map[string]json.RawMessage) (map[string]json.RawMessage, error) {
			called = true
			if key != HistoryKey {
				t.Errorf("expected key %q, got %q", HistoryKey, key)
			}
			return items, nil
		}

		s := NewMemory(0)
		s.Write(HistoryKey, `{"x":{"name":"X"}}`)
		if _, err := LoadDocument[entry](s, HistoryKey); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !called {
			t.Error("expected version 0 hook to run")
		}
	})
}

func TestSaveDocument(t *testing.T) {
	t.Run("Writes Current Version", func(t *testing.T) {
		s := NewMemory(0)
		if err := SaveDocument(s, HistoryKey, map[string]entry{"a": {Name: "A"}}); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		raw, _, _ := s.Read(HistoryKey)
		var env Envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			t.Fatalf("saved document is not valid JSON: %v", err)
		}
		if env.Version != CurrentVersion {
			t.Errorf("expected version %d, got %d", CurrentVersion, env.Version)
		}

		items, err := LoadDocument[entry](s, HistoryKey)
		if err != nil || items["a"].Name != "A" {
			t.Errorf("expected saved item to load, got %+v err=%v", items, err)
		}
	})

	t.Run("Quota Exceeded", func(t *testing.T) {
		s := NewMemory(10)
		err := SaveDocument(s, FavoritesKey, map[string]entry{"a": {Name: strings.Repeat("x", 50)}})
		if !errors.Is(err, ErrQuotaExceeded) {
			t.Errorf("expected ErrQuotaExceeded, got %v", err)
		}
	})
}
