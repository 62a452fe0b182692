package candidex

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/search"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.CandidateRepository())
		assert.NotNil(t, db.CityRepository())
		assert.NotNil(t, db.CheckpointRepository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("in-memory database", func(t *testing.T) {
		db, err := NewDatabase("", WithInMemory())
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.CandidateRepository())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, db)

	// Close the database
	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create index pipeline", func(t *testing.T) {
		pipeline, err := db.NewIndexPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create search engine", func(t *testing.T) {
		engine, err := db.NewEngine()
		require.NoError(t, err)
		require.NotNil(t, engine)
	})
}

func TestDatabase_UpsertThenSearch(t *testing.T) {
	db, err := NewDatabase("", WithInMemory())
	require.NoError(t, err)
	defer db.Close()

	pipeline, err := db.NewIndexPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	engine, err := db.NewEngine()
	require.NoError(t, err)

	ctx := context.Background()

	city, err := db.CityRepository().GetOrCreateCity(ctx, "Berlin", 52.520008, 13.404954)
	require.NoError(t, err)

	_, err = pipeline.Upsert(ctx,
		&core.Candidate{
			FullName:  "Lena Vogt",
			Positions: []string{"Backend Engineer"},
			Bio:       "Distributed systems and storage engines",
			Featured:  true,
			Cities:    []core.ID{city.Id},
		},
		&core.Candidate{
			FullName:  "Samir Haddad",
			Positions: []string{"Data Engineer"},
			Bio:       "Pipelines and batch processing",
		},
	)
	require.NoError(t, err)

	// Refresh runs asynchronously
	time.Sleep(100 * time.Millisecond)

	result, err := engine.Search(ctx, &search.Request{Query: "storage"})
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "Lena Vogt", result.Candidates[0].Candidate.FullName)

	geo, err := engine.Search(ctx, &search.Request{
		Geo: &search.GeoFilter{Lat: 52.520008, Lon: 13.404954, RadiusKm: 25},
	})
	require.NoError(t, err)
	require.Len(t, geo.Candidates, 1)
	assert.Equal(t, "Lena Vogt", geo.Candidates[0].Candidate.FullName)

	sample, err := engine.FeaturedSample(ctx, &search.Request{PageSize: 5})
	require.NoError(t, err)
	require.Len(t, sample.Candidates, 1)
	assert.True(t, sample.Candidates[0].Candidate.Featured)
}
