package section

import "context"

// Section defines one category of academic-record entries (e.g. "Journal
// Publications"): a schema of logical attribute names mapped to the storage
// keys used inside record field payloads, plus the discrete value domains of
// attributes that support sub-sectioning. Immutable for a compilation run.
type Section struct {
	ID           string
	Title        string
	Attributes   map[string]string   // logical name -> storage key
	ValueDomains map[string][]string // logical name -> declared discrete values
}

// StorageKey resolves a logical attribute name to its storage key. Falls
// back to the logical name itself so ad-hoc attributes still round-trip.
func (s Section) StorageKey(logical string) string {
	if key, ok := s.Attributes[logical]; ok && key != "" {
		return key
	}
	return logical
}

// Record is one stored academic-activity entry. Fields is the JSON-decoded
// payload keyed by storage key; values are opaque scalars. Read-only to the
// compilation engine.
type Record struct {
	ID        string
	SectionID string
	Fields    map[string]any
}

// Value returns the record's value for a storage key as text.
func (r Record) Value(storageKey string) string {
	return Stringify(r.Fields[storageKey])
}

type Repository interface {
	GetAll(ctx context.Context) ([]Section, error)
	GetByID(ctx context.Context, id string) (Section, error)
}

type RecordRepository interface {
	GetForUser(ctx context.Context, userID string, sectionIDs []string) ([]Record, error)
}
