package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Candidate represents a job seeker profile in the search pool.
// Document and SearchIndex are derived values maintained by the indexer
// whenever the textual profile fields change.
type Candidate struct {
	Id           ID
	FullName     string
	LocationText string    // Free-form location description shown on the profile
	Positions    []string  // Desired position titles
	Bio          string    // Free-text introduction
	Document     string    // Derived searchable document (normalized concatenation)
	SearchIndex  uint64    // Monotonic secondary sort key, reassigned on each document refresh
	Featured     bool      // Eligible for featured sampling
	CreatedAt    time.Time // When the profile was created
	InsertedAt   time.Time // When the record was inserted into the database
	UpdatedAt    time.Time // When the record was last updated
	Cities       []ID      // Desired city links (source of the bridge index)
}

// DesiredCity represents a city candidates can select as a desired work location.
type DesiredCity struct {
	Id         ID
	Name       string
	Lat        float64 // Stored with microdegree precision
	Lon        float64 // Stored with microdegree precision
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Slug returns the normalized city name used for content-based IDs.
// Seeding the same city twice therefore resolves to the same record.
func (c *DesiredCity) Slug() string {
	return strings.ToLower(strings.TrimSpace(c.Name))
}

// Checkpoint records resume state for a long-running processor.
type Checkpoint struct {
	ProcessorType string
	LastID        ID
	UpdatedAt     time.Time
}

// RankedCandidate pairs a candidate with its text relevance rank.
// Rank is zero when the originating query carried no text predicate.
type RankedCandidate struct {
	Candidate *Candidate
	Rank      float64
}
