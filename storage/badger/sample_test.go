package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/storage"
)

func TestSampleCandidates_FewerThanK(t *testing.T) {
	candidateRepo, cityRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { cityRepo.Close(); candidateRepo.Close(); backend.Close() }()

	ctx := context.Background()

	candidates := []*core.Candidate{
		{FullName: "Candidate 1"},
		{FullName: "Candidate 2"},
		{FullName: "Candidate 3"},
	}
	_, err = candidateRepo.AddCandidates(ctx, candidates...)
	if err != nil {
		t.Fatalf("Failed to add candidates: %v", err)
	}

	// With fewer matches than k, everyone is returned
	sampled, err := candidateRepo.SampleCandidates(ctx, &storage.CandidateQuery{}, 10)
	if err != nil {
		t.Fatalf("Failed to sample: %v", err)
	}

	if len(sampled) != 3 {
		t.Fatalf("Expected all 3 candidates, got %d", len(sampled))
	}

	seen := map[core.ID]bool{}
	for _, c := range sampled {
		if seen[c.Id] {
			t.Fatalf("Candidate %d appeared twice", c.Id)
		}
		seen[c.Id] = true
	}
}

func TestSampleCandidates_ExactlyK(t *testing.T) {
	candidateRepo, cityRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { cityRepo.Close(); candidateRepo.Close(); backend.Close() }()

	ctx := context.Background()

	var candidates []*core.Candidate
	for i := 1; i <= 10; i++ {
		candidates = append(candidates, &core.Candidate{FullName: fmt.Sprintf("Candidate %d", i)})
	}
	added, err := candidateRepo.AddCandidates(ctx, candidates...)
	if err != nil {
		t.Fatalf("Failed to add candidates: %v", err)
	}

	pool := map[core.ID]bool{}
	for _, c := range added {
		pool[c.Id] = true
	}

	sampled, err := candidateRepo.SampleCandidates(ctx, &storage.CandidateQuery{}, 4)
	if err != nil {
		t.Fatalf("Failed to sample: %v", err)
	}

	if len(sampled) != 4 {
		t.Fatalf("Expected 4 candidates, got %d", len(sampled))
	}

	seen := map[core.ID]bool{}
	for _, c := range sampled {
		if !pool[c.Id] {
			t.Fatalf("Sampled unknown candidate %d", c.Id)
		}
		if seen[c.Id] {
			t.Fatalf("Candidate %d appeared twice", c.Id)
		}
		seen[c.Id] = true
	}
}

func TestSampleCandidates_FeaturedOnly(t *testing.T) {
	candidateRepo, cityRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { cityRepo.Close(); candidateRepo.Close(); backend.Close() }()

	ctx := context.Background()

	candidates := []*core.Candidate{
		{FullName: "Featured 1", Featured: true},
		{FullName: "Regular 1"},
		{FullName: "Featured 2", Featured: true},
		{FullName: "Regular 2"},
	}
	_, err = candidateRepo.AddCandidates(ctx, candidates...)
	if err != nil {
		t.Fatalf("Failed to add candidates: %v", err)
	}

	sampled, err := candidateRepo.SampleCandidates(ctx, &storage.CandidateQuery{FeaturedOnly: true}, 10)
	if err != nil {
		t.Fatalf("Failed to sample: %v", err)
	}

	if len(sampled) != 2 {
		t.Fatalf("Expected 2 featured candidates, got %d", len(sampled))
	}
	for _, c := range sampled {
		if !c.Featured {
			t.Fatalf("Sampled non-featured candidate '%s'", c.FullName)
		}
	}
}

func TestSampleCandidates_TextFilter(t *testing.T) {
	candidateRepo, cityRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { cityRepo.Close(); candidateRepo.Close(); backend.Close() }()

	ctx := context.Background()

	candidates := []*core.Candidate{
		{FullName: "Embedded Dev", Bio: "Firmware and embedded systems."},
		{FullName: "Web Dev", Bio: "Web applications all day."},
		{FullName: "Also Embedded", Bio: "Embedded Linux specialist."},
	}
	_, err = candidateRepo.AddCandidates(ctx, candidates...)
	if err != nil {
		t.Fatalf("Failed to add candidates: %v", err)
	}
	refreshAll(t, ctx, candidateRepo)

	sampled, err := candidateRepo.SampleCandidates(ctx, &storage.CandidateQuery{Tokens: []string{"embedded"}}, 10)
	if err != nil {
		t.Fatalf("Failed to sample: %v", err)
	}

	if len(sampled) != 2 {
		t.Fatalf("Expected 2 matching candidates, got %d", len(sampled))
	}
	for _, c := range sampled {
		if c.FullName == "Web Dev" {
			t.Fatal("Sampled a candidate that does not match the text predicate")
		}
	}
}

func TestSampleCandidates_ZeroK(t *testing.T) {
	candidateRepo, cityRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { cityRepo.Close(); candidateRepo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = candidateRepo.AddCandidates(ctx, &core.Candidate{FullName: "Lonely"})
	if err != nil {
		t.Fatalf("Failed to add candidate: %v", err)
	}

	sampled, err := candidateRepo.SampleCandidates(ctx, &storage.CandidateQuery{}, 0)
	if err != nil {
		t.Fatalf("Failed to sample: %v", err)
	}
	if len(sampled) != 0 {
		t.Fatalf("Expected empty sample for k=0, got %d", len(sampled))
	}
}
