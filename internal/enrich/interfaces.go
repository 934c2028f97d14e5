package enrich

import (
	"context"
	"time"
)

// Prober answers liveness checks against a single domain. Both calls
// recover transport failures internally and never return an error.
type Prober interface {
	// Probe issues the lightweight existence check (HEAD).
	Probe(ctx context.Context, domain string) LivenessStatus
	// Recheck issues the heavier check (full GET) used to absorb servers
	// that reject HEAD requests.
	Recheck(ctx context.Context, domain string) LivenessStatus
}

// Fetcher retrieves page content for a domain and extracts contacts from
// it. Failures after retries surface as ContactSet.Err, never as an error.
type Fetcher interface {
	FetchContacts(ctx context.Context, domain string) ContactSet
}

// Extractor pulls contacts out of already-fetched page content.
type Extractor interface {
	Extract(body []byte) ContactSet
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
