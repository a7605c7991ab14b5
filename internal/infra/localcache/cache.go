// Package localcache is the key/value store behind the non-authoritative
// fallback. Values are wrapped in a JSON envelope carrying the write time and
// an optional expiry.
package localcache

import (
	"context"
	"encoding/json"
	"time"

	"techpoints/internal/pkg/errs"
)

var (
	ErrAtomicConflict = errs.New("cache atomic update kept conflicting")
	ErrEncode         = errs.New("cache value could not be encoded")
)

type Entry struct {
	Value      json.RawMessage `json:"value"`
	Timestamp  time.Time       `json:"timestamp"`
	Expiration *time.Time      `json:"expiration,omitempty"`
}

func (e Entry) Expired(now time.Time) bool {
	return e.Expiration != nil && !now.Before(*e.Expiration)
}

func (e Entry) Decode(v any) error {
	return json.Unmarshal(e.Value, v)
}

type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
	// Atomic runs fn against a consistent view of keys. Writes made through the
	// view are applied together when fn returns nil and discarded otherwise.
	Atomic(ctx context.Context, keys []string, fn func(view AtomicView) error) error
}

type AtomicView interface {
	Get(key string) (Entry, bool)
	Set(key string, value any, ttl time.Duration) error
	Remove(key string)
}

func encodeEntry(value any, ttl time.Duration, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "marshal cache value"), ErrEncode)
	}
	entry := Entry{Value: raw, Timestamp: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		entry.Expiration = &exp
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "marshal cache entry"), ErrEncode)
	}
	return b, nil
}

func decodeEntry(b []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return Entry{}, errs.Wrap(err, "unmarshal cache entry")
	}
	return e, nil
}

// pendingWrite is a staged Set (data != nil) or Remove (data == nil).
type pendingWrite struct {
	data []byte
	ttl  time.Duration
}

// stagedView buffers writes until the owning backend commits them.
type stagedView struct {
	now     time.Time
	reads   map[string]Entry
	writes  map[string]pendingWrite
	ordered []string
}

func newStagedView(now time.Time, reads map[string]Entry) *stagedView {
	return &stagedView{
		now:    now,
		reads:  reads,
		writes: make(map[string]pendingWrite),
	}
}

func (v *stagedView) Get(key string) (Entry, bool) {
	if w, ok := v.writes[key]; ok {
		if w.data == nil {
			return Entry{}, false
		}
		e, err := decodeEntry(w.data)
		return e, err == nil
	}
	e, ok := v.reads[key]
	if !ok || e.Expired(v.now) {
		return Entry{}, false
	}
	return e, true
}

func (v *stagedView) Set(key string, value any, ttl time.Duration) error {
	b, err := encodeEntry(value, ttl, v.now)
	if err != nil {
		return err
	}
	v.stage(key, pendingWrite{data: b, ttl: ttl})
	return nil
}

func (v *stagedView) Remove(key string) {
	v.stage(key, pendingWrite{})
}

func (v *stagedView) stage(key string, w pendingWrite) {
	if _, seen := v.writes[key]; !seen {
		v.ordered = append(v.ordered, key)
	}
	v.writes[key] = w
}
