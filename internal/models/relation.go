package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanetRelation is a persisted pairing of a Star Wars planet with a NASA
// exoplanet. Rows are immutable after insertion and only removed by the
// bulk-clear operation.
type PlanetRelation struct {
	ID             string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	StarWarsPlanet string    `gorm:"type:varchar(255);not null;index" json:"starwars_planet"`
	Exoplanet      string    `gorm:"type:varchar(255);not null;index" json:"exoplanet"`
	Description    string    `gorm:"type:text;not null" json:"description"`
	ImageURL       string    `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate ensures identifiers are generated automatically.
func (r *PlanetRelation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
