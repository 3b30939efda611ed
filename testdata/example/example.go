// Package example is a small data-store style package used by the docgen
// tests.
//
// Highlights:
//   - **Selectors**: verify list formatting survives rendering.
//   - **Actions**: verify bold markers stay intact.
package example

const (
	// StoreName identifies the example store.
	StoreName = "core/example"

	// internalKey should only appear with -u.
	internalKey = "_example"
)

// Record is a stored entity.
type Record struct {
	// ID is included to verify field docs render.
	ID string
}

// GetRecord returns the record with the given id. It is the stable selector
// the README documents.
func GetRecord(id string) *Record {
	return &Record{ID: id}
}

// UnstableGetRecordEdits is not yet part of the public API and must be kept
// out of generated docs.
func UnstableGetRecordEdits(id string) []string {
	return nil
}

// ExperimentalPurge drops every record. Experimental, undocumented.
func ExperimentalPurge() {}
