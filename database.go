// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package candidex

import (
	"log/slog"

	"github.com/poiesic/candidex/indexer"
	"github.com/poiesic/candidex/search"
	"github.com/poiesic/candidex/storage"
	"github.com/poiesic/candidex/storage/badger"
)

type Database struct {
	backend        *badger.Backend
	candidateRepo  storage.CandidateRepository
	cityRepo       storage.CityRepository
	checkpointRepo storage.CheckpointRepository
	logger         *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	inMemory bool
}

// WithInMemory keeps the whole database in memory. Nothing is persisted;
// intended for tests and short-lived tooling.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create candidate repository
	candidateRepo, err := badger.NewCandidateRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create city repository
	cityRepo, err := badger.NewCityRepository(backend)
	if err != nil {
		candidateRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create checkpoint repository
	checkpointRepo := badger.NewCheckpointRepository(backend)

	return &Database{
		backend:        backend,
		candidateRepo:  candidateRepo,
		cityRepo:       cityRepo,
		checkpointRepo: checkpointRepo,
		logger:         slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close repositories
	if err := db.cityRepo.Close(); err != nil {
		db.logger.Error("error closing city repository", "err", err)
		return err
	}
	if err := db.candidateRepo.Close(); err != nil {
		db.logger.Error("error closing candidate repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) CandidateRepository() storage.CandidateRepository {
	return db.candidateRepo
}

func (db *Database) CityRepository() storage.CityRepository {
	return db.cityRepo
}

func (db *Database) NewIndexPipeline(opts ...indexer.Option) (*indexer.Pipeline, error) {
	return indexer.NewPipeline(db.candidateRepo, db.checkpointRepo, opts...)
}

func (db *Database) CheckpointRepository() storage.CheckpointRepository {
	return db.checkpointRepo
}

func (db *Database) NewEngine(opts ...search.Option) (*search.Engine, error) {
	return search.NewEngine(db.candidateRepo, db.cityRepo, opts...)
}
