package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/exowars/exowars/internal/database"
	"github.com/exowars/exowars/internal/models"
)

// GormStore persists relations in a relational database through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a relational RelationStore.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("relation store: db is required")
	}
	return &GormStore{db: db}, nil
}

// Init creates the relation table when absent. Safe to call repeatedly.
func (s *GormStore) Init(ctx context.Context) error {
	return database.AutoMigrate(s.db.WithContext(ensuredContext(ctx)))
}

// Insert stores a new relation and returns its identifier.
func (s *GormStore) Insert(ctx context.Context, relation *models.PlanetRelation) (string, error) {
	if relation == nil {
		return "", errors.New("relation store: relation is required")
	}

	if err := s.db.WithContext(ensuredContext(ctx)).Create(relation).Error; err != nil {
		return "", fmt.Errorf("relation store: insert: %w", err)
	}
	return relation.ID, nil
}

// List returns one page of relations ordered by the requested column.
func (s *GormStore) List(ctx context.Context, opts ListOptions) (*Page, error) {
	opts.normalise()
	ctx = ensuredContext(ctx)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.PlanetRelation{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("relation store: count: %w", err)
	}

	var rows []models.PlanetRelation
	offset := (opts.Page - 1) * opts.PageSize
	err := s.db.WithContext(ctx).
		Order(opts.SortBy + " " + opts.Order).
		Limit(opts.PageSize).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("relation store: list: %w", err)
	}

	return &Page{Page: opts.Page, Total: total, Data: rows}, nil
}

// Clear removes every stored relation.
func (s *GormStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ensuredContext(ctx)).
		Where("1 = 1").
		Delete(&models.PlanetRelation{}).Error
	if err != nil {
		return fmt.Errorf("relation store: clear: %w", err)
	}
	return nil
}

func ensuredContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
