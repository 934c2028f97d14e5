package uuid

import (
	"testing"

	guuid "github.com/google/uuid"
)

func TestNewIDIsValidV7(t *testing.T) {
	t.Parallel()

	g := NewUUIDGenerator()
	raw, err := g.NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	parsed, err := guuid.Parse(raw)
	if err != nil {
		t.Fatalf("NewID() produced unparseable id %q: %v", raw, err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected version 7, got %d", parsed.Version())
	}
}

func TestNewIDsAreUnique(t *testing.T) {
	t.Parallel()

	g := NewUUIDGenerator()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := g.NewID()
		if err != nil {
			t.Fatalf("NewID() error = %v", err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
