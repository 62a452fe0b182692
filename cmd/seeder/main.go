package main

import (
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/poiesic/candidex"
	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/indexer"
)

type seedCity struct {
	name string
	lat  float64
	lon  float64
}

var seedCities = []seedCity{
	{"Berlin", 52.520008, 13.404954},
	{"Hamburg", 53.551086, 9.993682},
	{"Munich", 48.135125, 11.581981},
	{"Cologne", 50.937531, 6.960279},
	{"Frankfurt", 50.110924, 8.682127},
	{"Stuttgart", 48.775845, 9.182932},
	{"Düsseldorf", 51.227741, 6.773456},
	{"Leipzig", 51.339695, 12.373075},
	{"Dortmund", 51.513587, 7.465298},
	{"Essen", 51.455643, 7.011555},
	{"Bremen", 53.079296, 8.801694},
	{"Dresden", 51.050409, 13.737262},
	{"Hanover", 52.375892, 9.732010},
	{"Nuremberg", 49.452030, 11.076750},
	{"Potsdam", 52.390569, 13.064473},
}

var firstNames = []string{
	"Anna", "Ben", "Clara", "David", "Elena", "Felix", "Greta", "Hassan",
	"Ida", "Jonas", "Katya", "Lukas", "Mara", "Nils", "Olga", "Piotr",
	"Rosa", "Samir", "Tania", "Umut", "Vera", "Wim", "Yusuf", "Zofia",
}

var lastNames = []string{
	"Adler", "Brandt", "Conti", "Demir", "Eriksen", "Fischer", "Gruber",
	"Hoffmann", "Ivanova", "Jansen", "Keller", "Lehmann", "Moreau",
	"Novak", "Okafor", "Petrov", "Quast", "Richter", "Sato", "Torres",
	"Ullrich", "Vogel", "Weber", "Zimmermann",
}

var positions = []string{
	"Backend Engineer", "Frontend Engineer", "Data Engineer",
	"Site Reliability Engineer", "Machine Learning Engineer",
	"Mobile Developer", "QA Engineer", "DevOps Engineer",
	"Product Manager", "UX Designer", "Data Scientist",
	"Platform Engineer", "Security Engineer", "Technical Writer",
	"Engineering Manager", "Embedded Engineer",
	"Database Administrator", "Solutions Architect",
}

var bioLeads = []string{
	"Builds resilient services under real production load.",
	"Cares about observability and boring, predictable deploys.",
	"Moved from consulting into product engineering.",
	"Enjoys pairing and untangling legacy systems.",
	"Ships small and measures everything.",
	"Started out in embedded systems before moving to the backend.",
	"Prefers deleting code over writing it.",
	"Keen on mentoring and internal tooling.",
	"Comes from a research background in distributed computing.",
	"Spent the last years scaling a marketplace platform.",
	"Focused on developer experience and build pipelines.",
	"Led a small team through two major platform migrations.",
}

var skills = []string{
	"Kubernetes", "Postgres", "Kafka", "Terraform", "gRPC", "Redis",
	"React", "Swift", "Kotlin", "Spark", "Airflow", "Prometheus",
	"Elasticsearch", "RabbitMQ", "GraphQL", "Ansible",
}

var locationPatterns = []string{
	"%s",
	"%s and surroundings",
	"greater %s area",
	"near %s",
	"remote, based in %s",
}

var (
	dbPath         = flag.String("db", "./candidex_db", "path to the database directory")
	candidateCount = flag.Int("count", 250, "number of candidates to generate")
	randSeed       = flag.Int64("seed", 1, "seed for the candidate generator")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// generateCandidates returns an iterator over n synthetic candidate profiles.
// Roughly one in five is featured and one in eight predates the default
// recency window, so a seeded database exercises both filters.
func generateCandidates(rng *rand.Rand, cities []*core.DesiredCity, n int) iter.Seq[*core.Candidate] {
	return func(yield func(*core.Candidate) bool) {
		now := time.Now().UTC()
		for i := 0; i < n; i++ {
			cityPicks := rng.Perm(len(cities))[:1+rng.Intn(3)]
			cityIDs := make([]core.ID, len(cityPicks))
			for j, pick := range cityPicks {
				cityIDs[j] = cities[pick].Id
			}

			wanted := []string{positions[rng.Intn(len(positions))]}
			if rng.Intn(3) == 0 {
				wanted = append(wanted, positions[rng.Intn(len(positions))])
			}

			createdAt := now.Add(-time.Duration(rng.Intn(300*24)) * time.Hour)
			if rng.Intn(8) == 0 {
				createdAt = now.AddDate(-3, 0, 0)
			}

			candidate := &core.Candidate{
				FullName: firstNames[rng.Intn(len(firstNames))] + " " +
					lastNames[rng.Intn(len(lastNames))],
				LocationText: fmt.Sprintf(
					locationPatterns[rng.Intn(len(locationPatterns))],
					cities[cityPicks[0]].Name),
				Positions: wanted,
				Bio: bioLeads[rng.Intn(len(bioLeads))] + " Works with " +
					skills[rng.Intn(len(skills))] + " and " +
					skills[rng.Intn(len(skills))] + ".",
				Featured:  rng.Intn(5) == 0,
				CreatedAt: createdAt,
				Cities:    cityIDs,
			}

			if !yield(candidate) {
				return
			}
		}
	}
}

// upsertBatched reads from a source iterator and upserts candidates in batches.
func upsertBatched(ctx context.Context, pipeline *indexer.Pipeline, source iter.Seq[*core.Candidate], batchSize int) error {
	batch := make([]*core.Candidate, 0, batchSize)

	for candidate := range source {
		batch = append(batch, candidate)
		if len(batch) == batchSize {
			if _, err := pipeline.Upsert(ctx, batch...); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	// Process any remaining candidates
	if len(batch) > 0 {
		if _, err := pipeline.Upsert(ctx, batch...); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	db, err := candidex.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIndexPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	// Seed the desired-city table. Content-based IDs make reruns land on
	// the same records.
	cities := make([]*core.DesiredCity, 0, len(seedCities))
	for _, sc := range seedCities {
		city, err := db.CityRepository().GetOrCreateCity(ctx, sc.name, sc.lat, sc.lon)
		if err != nil {
			panic(err)
		}
		cities = append(cities, city)
	}

	rng := rand.New(rand.NewSource(*randSeed))
	source := generateCandidates(rng, cities, *candidateCount)

	// Upsert in batches of 25
	if err := upsertBatched(ctx, pipeline, source, 25); err != nil {
		panic(err)
	}

	// Drain whatever the async refresh has not picked up yet
	refreshed, err := pipeline.Sweep(ctx, 0)
	if err != nil {
		panic(err)
	}

	slog.Info("seeding complete",
		"candidates", *candidateCount,
		"cities", len(cities),
		"swept", refreshed)
}
