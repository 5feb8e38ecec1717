// Package docs builds Markdown documentation from a project analysis and
// keeps it on disk as flat files.
package docs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OverviewKey is the key of the project overview entry
const OverviewKey = "overview"

var (
	// ErrNotFound is returned when a documentation file does not exist
	ErrNotFound = errors.New("documentation not found")

	// ErrInvalidModule is returned for module keys that cannot name a file
	ErrInvalidModule = errors.New("invalid module key")
)

// Entry is one generated documentation module
type Entry struct {
	Key         string      `json:"-"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Content     string      `json:"content"`
	Data        interface{} `json:"data"`
}

// Documentation is an ordered set of entries. Order is the generation
// order: the overview first, then configured modules.
type Documentation struct {
	Entries []Entry
}

// Add appends e, replacing an existing entry with the same key in place
func (d *Documentation) Add(e Entry) {
	for i := range d.Entries {
		if d.Entries[i].Key == e.Key {
			d.Entries[i] = e
			return
		}
	}
	d.Entries = append(d.Entries, e)
}

// Entry returns the entry stored under key
func (d *Documentation) Entry(key string) (Entry, bool) {
	for _, e := range d.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Keys returns the entry keys in order
func (d *Documentation) Keys() []string {
	keys := make([]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// MarshalJSON encodes the entries as a JSON object keyed by module,
// preserving entry order
func (d Documentation) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("failed to encode entry %s: %w", e.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object written by MarshalJSON, keeping key order
func (d *Documentation) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("documentation must be a JSON object")
	}

	d.Entries = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}

		var e Entry
		if err := dec.Decode(&e); err != nil {
			return fmt.Errorf("failed to decode entry %s: %w", key, err)
		}
		e.Key = key
		d.Entries = append(d.Entries, e)
	}

	_, err = dec.Token()
	return err
}

// titleFromKey turns a module key such as business_logic into a heading
func titleFromKey(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}
