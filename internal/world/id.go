package world

import "github.com/google/uuid"

// ID uniquely identifies a world in a store.
type ID uuid.UUID

// NewID returns a fresh random world id.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID parses the canonical string form of a world id.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	return ID(u), err
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether the id is the zero id, which never names a
// stored world.
func (id ID) IsZero() bool {
	return id == ID(uuid.Nil)
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}
