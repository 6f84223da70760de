package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/exowars/exowars/internal/models"
)

var relationPrefix = []byte("relation:")

// LevelStore persists relations in a LevelDB key-value database. LevelDB has
// no ordered range queries over arbitrary columns, so List performs a full
// prefix scan, sorts in memory and slices the requested page, producing the
// same result as the relational backend for equivalent data.
type LevelStore struct {
	db *leveldb.DB
}

// OpenLevelStore opens (or creates) the LevelDB database at path.
func OpenLevelStore(path string) (*LevelStore, error) {
	if path == "" {
		return nil, errors.New("relation store: leveldb path is required")
	}

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("relation store: open leveldb: %w", err)
	}
	return &LevelStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *LevelStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Init is a no-op; LevelDB needs no schema. Kept for contract symmetry.
func (s *LevelStore) Init(_ context.Context) error {
	return nil
}

// Insert stores a new relation under a generated time-based identifier. The
// nanosecond prefix keeps natural key order aligned with creation order; the
// uuid fragment disambiguates same-nanosecond inserts.
func (s *LevelStore) Insert(_ context.Context, relation *models.PlanetRelation) (string, error) {
	if relation == nil {
		return "", errors.New("relation store: relation is required")
	}

	if relation.CreatedAt.IsZero() {
		relation.CreatedAt = time.Now().UTC()
	}
	if relation.ID == "" {
		relation.ID = strconv.FormatInt(relation.CreatedAt.UnixNano(), 10) + "-" + uuid.NewString()[:8]
	}

	value, err := json.Marshal(relation)
	if err != nil {
		return "", fmt.Errorf("relation store: encode: %w", err)
	}

	if err := s.db.Put(keyFor(relation.ID), value, nil); err != nil {
		return "", fmt.Errorf("relation store: insert: %w", err)
	}
	return relation.ID, nil
}

// List scans every stored relation, sorts and pages in memory.
func (s *LevelStore) List(_ context.Context, opts ListOptions) (*Page, error) {
	opts.normalise()

	rows, err := s.scan()
	if err != nil {
		return nil, err
	}

	sortRelations(rows, opts.SortBy, opts.Order)

	total := int64(len(rows))
	offset := (opts.Page - 1) * opts.PageSize
	if offset > len(rows) {
		offset = len(rows)
	}
	end := offset + opts.PageSize
	if end > len(rows) {
		end = len(rows)
	}

	return &Page{Page: opts.Page, Total: total, Data: rows[offset:end]}, nil
}

// Clear deletes every stored relation in one batch.
func (s *LevelStore) Clear(_ context.Context) error {
	batch := new(leveldb.Batch)

	iter := s.db.NewIterator(util.BytesPrefix(relationPrefix), nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		batch.Delete(key)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("relation store: clear scan: %w", err)
	}

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("relation store: clear: %w", err)
	}
	return nil
}

func (s *LevelStore) scan() ([]models.PlanetRelation, error) {
	var rows []models.PlanetRelation

	iter := s.db.NewIterator(util.BytesPrefix(relationPrefix), nil)
	for iter.Next() {
		var relation models.PlanetRelation
		if err := json.Unmarshal(iter.Value(), &relation); err != nil {
			iter.Release()
			return nil, fmt.Errorf("relation store: decode %s: %w", iter.Key(), err)
		}
		rows = append(rows, relation)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("relation store: scan: %w", err)
	}

	return rows, nil
}

func sortRelations(rows []models.PlanetRelation, sortBy, order string) {
	asc := order == "ASC"

	less := func(a, b models.PlanetRelation) bool {
		switch sortBy {
		case SortByStarWarsPlanet:
			return a.StarWarsPlanet < b.StarWarsPlanet
		case SortByExoplanet:
			return a.Exoplanet < b.Exoplanet
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if asc {
			return less(rows[i], rows[j])
		}
		return less(rows[j], rows[i])
	})
}

func keyFor(id string) []byte {
	return append(append([]byte{}, relationPrefix...), id...)
}
