package storage

import "fmt"

// Schema describes which version of the RSVP table a store is working
// against. Callers pass it in explicitly instead of probing for columns.
type Schema struct {
	Version int
}

var (
	// SchemaV1 is the original rsvps table without actual_guest_count.
	SchemaV1 = Schema{Version: 1}
	// SchemaV2 adds actual_guest_count.
	SchemaV2 = Schema{Version: 2}

	LatestSchema = SchemaV2
)

// SchemaFromVersion returns the schema for a configured version number
func SchemaFromVersion(v int) (Schema, error) {
	if v < SchemaV1.Version || v > LatestSchema.Version {
		return Schema{}, fmt.Errorf("unsupported schema version %d (supported 1-%d)", v, LatestSchema.Version)
	}
	return Schema{Version: v}, nil
}

// HasActualGuestCount reports whether the actual_guest_count column exists
func (s Schema) HasActualGuestCount() bool {
	return s.Version >= SchemaV2.Version
}
