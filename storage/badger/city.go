package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/geo"
	"github.com/poiesic/candidex/storage"
)

// CityRepository implements storage.CityRepository for BadgerDB.
type CityRepository struct {
	backend *Backend
}

var _ storage.CityRepository = (*CityRepository)(nil)

// NewCityRepository creates a new CityRepository.
func NewCityRepository(backend *Backend) (*CityRepository, error) {
	return &CityRepository{
		backend: backend,
	}, nil
}

// Close releases resources. CityRepository has no resources to release.
func (r *CityRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *CityRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddCities adds one or more cities to storage.
func (r *CityRepository) AddCities(ctx context.Context, cities ...*core.DesiredCity) ([]*core.DesiredCity, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, city := range cities {
			// Use content-based ID if not set
			if city.Id == 0 {
				city.Id = core.IDFromContent(city.Slug())
			}

			existing, err := readCity(tx, makeCityKey(city.Id))
			if err != nil {
				return err
			}
			if existing != nil {
				return storage.ErrDuplicateKey
			}

			// Set timestamps
			city.InsertedAt = time.Now().UTC()
			city.UpdatedAt = city.InsertedAt

			// Store primary record
			key := makeCityKey(city.Id)
			value := storage.MarshalCity(city)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Store name index
			nameKey := makeCityNameKey(city.Slug())
			if err := tx.Set(nameKey, storage.MarshalID(city.Id)); err != nil {
				return err
			}

			// Store cell index
			cellKey := makeCityCellKey(geo.CellOf(city.Lat, city.Lon), city.Id)
			if err := tx.Set(cellKey, storage.MarshalID(city.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return cities, err
}

// UpdateCities updates existing cities.
func (r *CityRepository) UpdateCities(ctx context.Context, cities ...*core.DesiredCity) ([]*core.DesiredCity, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, city := range cities {
			key := makeCityKey(city.Id)

			// Read old city to detect changes
			old, err := readCity(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// Update timestamp
			city.UpdatedAt = time.Now().UTC()
			city.InsertedAt = old.InsertedAt

			// Store updated record
			value := storage.MarshalCity(city)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update name index if the slug changed
			if old.Slug() != city.Slug() {
				if err := tx.Delete(makeCityNameKey(old.Slug())); err != nil {
					return err
				}
				if err := tx.Set(makeCityNameKey(city.Slug()), storage.MarshalID(city.Id)); err != nil {
					return err
				}
			}

			// Update cell index if the coordinates moved cells
			oldCell := geo.CellOf(old.Lat, old.Lon)
			newCell := geo.CellOf(city.Lat, city.Lon)
			if oldCell != newCell {
				if err := tx.Delete(makeCityCellKey(oldCell, city.Id)); err != nil {
					return err
				}
				if err := tx.Set(makeCityCellKey(newCell, city.Id), storage.MarshalID(city.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return cities, err
}

// DeleteCities removes cities by their IDs.
func (r *CityRepository) DeleteCities(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeCityKey(id)

			// Read city to get metadata for index cleanup
			city, err := readCity(tx, key)
			if err != nil {
				return err
			}
			if city == nil {
				return storage.ErrNotFound
			}

			// Delete from name index
			if err := tx.Delete(makeCityNameKey(city.Slug())); err != nil {
				return err
			}

			// Delete from cell index
			if err := tx.Delete(makeCityCellKey(geo.CellOf(city.Lat, city.Lon), city.Id)); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetCity retrieves a single city by ID.
func (r *CityRepository) GetCity(ctx context.Context, id core.ID) (*core.DesiredCity, error) {
	var result *core.DesiredCity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCityKey(id)
		var err error
		result, err = readCity(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetCities retrieves multiple cities by their IDs.
func (r *CityRepository) GetCities(ctx context.Context, ids ...core.ID) ([]*core.DesiredCity, error) {
	var result []*core.DesiredCity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeCityKey(id)
			city, err := readCity(tx, key)
			if err != nil {
				return err
			}
			if city != nil {
				result = append(result, city)
			}
		}
		return nil
	}, false)
	return result, err
}

// FindCityByName finds a city by its normalized name.
func (r *CityRepository) FindCityByName(ctx context.Context, name string) (*core.DesiredCity, error) {
	slug := (&core.DesiredCity{Name: name}).Slug()

	var result *core.DesiredCity
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Look up ID from name index
		nameKey := makeCityNameKey(slug)
		item, err := tx.Get(nameKey)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var cityID core.ID
		err = item.Value(func(val []byte) error {
			cityID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		// Look up full city
		cityKey := makeCityKey(cityID)
		result, err = readCity(tx, cityKey)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetOrCreateCity finds or creates a city by name.
func (r *CityRepository) GetOrCreateCity(ctx context.Context, name string, lat, lon float64) (*core.DesiredCity, error) {
	// Try to find existing city
	city, err := r.FindCityByName(ctx, name)
	if err == nil {
		return city, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}

	// Create new city
	newCity := &core.DesiredCity{
		Name: name,
		Lat:  lat,
		Lon:  lon,
	}

	// Try to add it (may fail due to race condition)
	added, err := r.AddCities(ctx, newCity)
	if err != nil {
		// If add failed, try to find it again (someone else may have created it)
		city, findErr := r.FindCityByName(ctx, name)
		if findErr == nil {
			return city, nil
		}
		return nil, err
	}

	return added[0], nil
}

// CitiesWithin returns the IDs of the cities lying within radiusKm of the
// center. Candidate cells come from the cover, so only cities in those
// cells are read and distance-checked.
func (r *CityRepository) CitiesWithin(ctx context.Context, lat, lon, radiusKm float64) ([]core.ID, error) {
	cells := geo.CoverRadius(lat, lon, radiusKm)
	if len(cells) == 0 {
		return nil, nil
	}

	var results []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		seen := make(map[core.ID]bool)
		for _, cell := range cells {
			ids, err := scanCellCities(tx, cell)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if seen[id] {
					continue
				}
				seen[id] = true

				// The cover is a superset; confirm the exact distance.
				city, err := readCity(tx, makeCityKey(id))
				if err != nil {
					return err
				}
				if city == nil {
					continue
				}
				if geo.Within(lat, lon, radiusKm, city.Lat, city.Lon) {
					results = append(results, id)
				}
			}
		}
		return nil
	}, false)

	return results, err
}

// Helper methods

// scanCellCities collects city IDs indexed under one cell.
func scanCellCities(tx *badger.Txn, cell geo.Cell) ([]core.ID, error) {
	prefix := makePartialCityCellKey(cell)
	var ids []core.ID

	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	defer iter.Close()

	for iter.Seek(prefix); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if !hasPrefix(key, prefix) {
			break
		}

		var id core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// hasPrefix checks if a byte slice has a given prefix
func hasPrefix(s, prefix []byte) bool {
	return len(s) >= len(prefix) && string(s[:len(prefix)]) == string(prefix)
}

// readCity reads a city from the transaction.
func readCity(tx *badger.Txn, key []byte) (*core.DesiredCity, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var city *core.DesiredCity
	err = item.Value(func(val []byte) error {
		var err error
		city, err = storage.UnmarshalCity(val)
		return err
	})
	return city, err
}
