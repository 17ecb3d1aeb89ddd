// Package catalog answers emotion-keyed lookups over the song dataset CSV.
// The file is re-read on every lookup; any problem with it is logged and
// reported to callers as an empty result.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/comigor/emotune/internal/emotion"
	"github.com/comigor/emotune/internal/logger"
)

var (
	ErrSourceMissing  = errors.New("catalog source not found")
	ErrMissingColumns = errors.New("catalog source is missing required columns")
)

// Entry is one song row.
type Entry struct {
	Performer string `json:"performer"`
	Title     string `json:"title"`
	Genre     string `json:"genre"`
	Emotion   string `json:"emotion"`
}

// Store reads the catalog from a CSV file.
type Store struct {
	path string
}

// New returns a Store reading path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the configured source path.
func (s *Store) Path() string { return s.path }

// Lookup returns every entry whose trimmed emotion equals label, in file order.
// An empty label, or a missing or malformed source, yields an empty slice.
func (s *Store) Lookup(label emotion.Label) []Entry {
	if strings.TrimSpace(string(label)) == "" {
		return []Entry{}
	}
	entries, err := s.load()
	if err != nil {
		logger.L.Warn("catalog lookup failed", "path", s.path, "error", err)
		return []Entry{}
	}

	matches := []Entry{}
	for _, e := range entries {
		if strings.TrimSpace(e.Emotion) == string(label) {
			matches = append(matches, e)
		}
	}
	logger.L.Debug("catalog lookup", "emotion", string(label), "matches", len(matches))
	return matches
}

// required columns in report order.
var requiredColumns = []string{"performer", "title", "genre", "emotion"}

// column aliases; the first name is canonical.
var columnAliases = map[string][]string{
	"emotion":   {"emotion", "emotion1"},
	"performer": {"performer", "singer"},
	"title":     {"title"},
	"genre":     {"genre"},
}

func (s *Store) load() ([]Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, s.path)
		}
		return nil, err
	}
	defer f.Close()

	return parse(f)
}

func parse(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrMissingColumns)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}
	width := 0
	for _, i := range idx {
		width = max(width, i+1)
	}

	var entries []Entry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if len(rec) < width {
			logger.L.Debug("skipping short catalog row", "line", line, "fields", len(rec))
			continue
		}
		entries = append(entries, Entry{
			Performer: rec[idx["performer"]],
			Title:     rec[idx["title"]],
			Genre:     rec[idx["genre"]],
			Emotion:   rec[idx["emotion"]],
		})
	}
	return entries, nil
}

func resolveColumns(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	idx := make(map[string]int, len(columnAliases))
	var missing []string
	for _, col := range requiredColumns {
		found := false
		for _, a := range columnAliases[col] {
			if i, ok := pos[a]; ok {
				idx[col] = i
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return idx, nil
}
