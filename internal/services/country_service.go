package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"agroinnova-backend/internal/models"
)

// CountryService reads the seeded country list
type CountryService struct {
	db *sqlx.DB
}

// NewCountryService creates a new country service
func NewCountryService(db *sqlx.DB) *CountryService {
	return &CountryService{db: db}
}

// List returns every country ordered by name
func (s *CountryService) List(ctx context.Context) ([]models.Country, error) {
	countries := []models.Country{}
	if err := s.db.SelectContext(ctx, &countries, `SELECT id, name, code, phone_code FROM countries ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	return countries, nil
}
