package store

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// CurrentVersion is the envelope version written by [SaveDocument].
const CurrentVersion = 1

// Envelope is the persisted form of a keyed document.
type Envelope struct {
	Version int                        `json:"version"`
	Items   map[string]json.RawMessage `json:"items"`
}

// Migration upgrades the items of a document stored under key by one version.
type Migration func(key string, items map[string]json.RawMessage) (map[string]json.RawMessage, error)

// Migrations maps a version to the hook that upgrades it to version+1.
//
// Version 0 is the bare slug-keyed object written before envelopes existed.
var Migrations = map[int]Migration{
	0: migrateBareObject,
}

// migrateBareObject drops entries that are not JSON objects.
func migrateBareObject(_ string, items map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(items))
	for slug, raw := range items {
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
			out[slug] = raw
		}
	}
	return out, nil
}

// decodeEnvelope accepts both the versioned envelope and the bare version 0 object.
func decodeEnvelope(raw string) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	if fields == nil {
		return &Envelope{Items: map[string]json.RawMessage{}}, nil
	}

	rawVersion, hasVersion := fields["version"]
	rawItems, hasItems := fields["items"]
	if !hasVersion || !hasItems {
		return &Envelope{Version: 0, Items: fields}, nil
	}

	env := &Envelope{}
	if err := json.Unmarshal(rawVersion, &env.Version); err != nil {
		return &Envelope{Version: 0, Items: fields}, nil
	}
	if err := json.Unmarshal(rawItems, &env.Items); err != nil {
		return nil, fmt.Errorf("%w: items: %v", ErrCorruptDocument, err)
	}
	if env.Items == nil {
		env.Items = map[string]json.RawMessage{}
	}
	return env, nil
}

// upgrade runs the registered migrations until env reaches [CurrentVersion].
func upgrade(key string, env *Envelope) error {
	if env.Version > CurrentVersion || env.Version < 0 {
		return fmt.Errorf("%w: %q has version %d, supported up to %d",
			ErrUnsupportedVersion, key, env.Version, CurrentVersion)
	}

	for env.Version < CurrentVersion {
		migrate, ok := Migrations[env.Version]
		if !ok {
			return fmt.Errorf("%w: no migration from version %d", ErrUnsupportedVersion, env.Version)
		}

		items, err := migrate(key, env.Items)
		if err != nil {
			return fmt.Errorf("failed to migrate %q from version %d: %w", key, env.Version, err)
		}
		env.Items = items
		env.Version++
	}
	return nil
}

// LoadDocument reads the document under key.
//
// An absent key yields an empty map and no error. A malformed document yields an empty map and
// [ErrCorruptDocument]; individually malformed items are skipped and reported the same way
// alongside the items that did decode. A document newer than [CurrentVersion] yields
// [ErrUnsupportedVersion].
func LoadDocument[T any](s Store, key string) (map[string]T, error) {
	items := make(map[string]T)

	raw, ok, err := s.Read(key)
	if err != nil {
		return items, err
	}
	if !ok || raw == "" {
		return items, nil
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		return items, err
	}
	if err := upgrade(key, env); err != nil {
		return items, err
	}

	var skipped []string
	for slug, rawItem := range env.Items {
		var item T
		if err := json.Unmarshal(rawItem, &item); err != nil {
			skipped = append(skipped, slug)
			continue
		}
		items[slug] = item
	}

	if len(skipped) > 0 {
		return items, fmt.Errorf("%w: skipped %d entries in %q", ErrCorruptDocument, len(skipped), key)
	}
	return items, nil
}

// SaveDocument writes items under key as a [CurrentVersion] envelope.
func SaveDocument[T any](s Store, key string, items map[string]T) error {
	env := Envelope{Version: CurrentVersion, Items: make(map[string]json.RawMessage, len(items))}
	for slug, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to encode %q entry %q: %w", key, slug, err)
		}
		env.Items[slug] = raw
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.Write(key, string(data))
}
