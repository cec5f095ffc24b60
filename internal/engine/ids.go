package engine

import "github.com/google/uuid"

// IDGenerator mints descriptor and subscription ids.
//
// Tests inject testutil.SequenceGenerator for stable ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered UUIDv7 ids.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
