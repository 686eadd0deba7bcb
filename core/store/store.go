package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/siherrmann/nutricoach/model"
)

// LoadError is returned when the embedding store file cannot be used.
// The service must not start serving with a store that failed to load.
type LoadError struct {
	Source string
	// Index of the offending record, -1 if the error concerns the whole file
	Index int
	Err   error
}

func (e *LoadError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("load embedding store %s: record %d: %v", e.Source, e.Index, e.Err)
	}
	return fmt.Sprintf("load embedding store %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Store is the immutable in-memory table of ingredient records.
// It is built once at startup and only read afterwards, so it is safe
// for concurrent use without locking.
type Store struct {
	records   []model.IngredientRecord
	dimension int
}

// rawRecord uses pointers to tell missing or null fields apart from empty ones
type rawRecord struct {
	Name              *string    `json:"name"`
	Embedding         *[]float32 `json:"embedding"`
	EvidenceStrength  *string    `json:"evidence_strength"`
	HealthConcernType *[]string  `json:"health_concern_type"`
}

// Load reads a JSON array of ingredient records from path
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Index: -1, Err: err}
	}
	return decode(data, path)
}

// LoadFromReader reads a JSON array of ingredient records from r.
// source is only used in error messages.
func LoadFromReader(r io.Reader, source string) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Source: source, Index: -1, Err: err}
	}
	return decode(data, source)
}

// New builds a store from records, validating the same invariants as Load
func New(records []model.IngredientRecord) (*Store, error) {
	dimension := 0
	for i, record := range records {
		if len(record.Embedding) == 0 {
			return nil, &LoadError{Source: "records", Index: i, Err: errors.New("empty embedding")}
		}
		if i == 0 {
			dimension = len(record.Embedding)
		} else if len(record.Embedding) != dimension {
			return nil, &LoadError{Source: "records", Index: i, Err: fmt.Errorf("embedding dimension %d differs from %d", len(record.Embedding), dimension)}
		}
	}

	copied := make([]model.IngredientRecord, len(records))
	copy(copied, records)

	return &Store{records: copied, dimension: dimension}, nil
}

func decode(data []byte, source string) (*Store, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &LoadError{Source: source, Index: -1, Err: errors.New("expected a JSON array of records")}
	}

	var raws []rawRecord
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, &LoadError{Source: source, Index: -1, Err: fmt.Errorf("malformed JSON: %w", err)}
	}

	records := make([]model.IngredientRecord, 0, len(raws))
	for i, raw := range raws {
		record, err := raw.toRecord()
		if err != nil {
			return nil, &LoadError{Source: source, Index: i, Err: err}
		}
		records = append(records, record)
	}

	s, err := New(records)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Source = source
		}
		return nil, err
	}
	return s, nil
}

func (r rawRecord) toRecord() (model.IngredientRecord, error) {
	switch {
	case r.Name == nil:
		return model.IngredientRecord{}, errors.New(`missing field "name"`)
	case r.Embedding == nil:
		return model.IngredientRecord{}, errors.New(`missing field "embedding"`)
	case r.EvidenceStrength == nil:
		return model.IngredientRecord{}, errors.New(`missing field "evidence_strength"`)
	case r.HealthConcernType == nil:
		return model.IngredientRecord{}, errors.New(`missing field "health_concern_type"`)
	}

	return model.IngredientRecord{
		Name:              *r.Name,
		Embedding:         *r.Embedding,
		EvidenceStrength:  *r.EvidenceStrength,
		HealthConcernType: *r.HealthConcernType,
	}, nil
}

// Records returns the records in store order.
// The returned slice is a copy; the records share their embedding arrays with the store
// and must be treated as read-only.
func (s *Store) Records() []model.IngredientRecord {
	if s == nil {
		return nil
	}
	out := make([]model.IngredientRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Dimension returns the embedding length shared by all records, 0 for an empty store
func (s *Store) Dimension() int {
	if s == nil {
		return 0
	}
	return s.dimension
}
