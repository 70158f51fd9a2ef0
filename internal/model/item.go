package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is the opaque identifier the store assigns to an item.
// Some backends send it as a JSON number, others as a string; both decode.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Item is the domain model for a todo entry.
// Title may be empty; UpdatedAt is only used for ordering.
type Item struct {
	ID        ID        `json:"_id"`
	Title     string    `json:"title,omitempty"`
	Done      bool      `json:"done"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UnmarshalJSON accepts updatedAt as an RFC 3339 string or as epoch
// milliseconds. A missing or null timestamp decodes to the zero time.
func (it *Item) UnmarshalJSON(b []byte) error {
	type plain Item
	var raw struct {
		plain
		UpdatedAt json.RawMessage `json:"updatedAt"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	ts, err := parseTimestamp(raw.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updatedAt: %w", err)
	}
	*it = Item(raw.plain)
	it.UpdatedAt = ts
	return nil
}

func parseTimestamp(b []byte) (time.Time, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return time.Time{}, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return time.Time{}, err
		}
		if s == "" {
			return time.Time{}, nil
		}
		return time.Parse(time.RFC3339Nano, s)
	}
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("not a timestamp: %s", b)
	}
	return time.UnixMilli(ms).UTC(), nil
}

// Toggled returns a copy of the item with Done negated.
func (it Item) Toggled() Item {
	it.Done = !it.Done
	return it
}

// Short returns a display form of the id, trimmed for narrow columns.
func (id ID) Short() string {
	s := string(id)
	if len(s) > 8 {
		return s[len(s)-8:]
	}
	if _, err := strconv.Atoi(s); err == nil {
		return "#" + s
	}
	return s
}
