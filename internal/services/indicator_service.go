package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"agroinnova-backend/internal/models"
)

// IndicatorService reads and moves the 3D markers of campiamigo profiles
type IndicatorService struct {
	db     *sqlx.DB
	events IndicatorBroadcaster
	log    *zap.Logger
}

// NewIndicatorService creates a new indicator service; events may be nil
func NewIndicatorService(db *sqlx.DB, events IndicatorBroadcaster, log *zap.Logger) *IndicatorService {
	if log == nil {
		log = zap.NewNop()
	}
	return &IndicatorService{db: db, events: events, log: log}
}

func (s *IndicatorService) indicatorRow(ctx context.Context, profileID int64) (*models.Indicator, error) {
	var ind models.Indicator
	if err := s.db.GetContext(ctx, &ind, `SELECT * FROM indicators WHERE user_id = ?`, profileID); err != nil {
		return nil, notFound(err, ErrIndicatorNotFound)
	}
	return &ind, nil
}

// Get returns the indicator of a profile with its zone and profile → auth → products graph
func (s *IndicatorService) Get(ctx context.Context, profileID int64) (*models.Indicator, error) {
	ind, err := s.indicatorRow(ctx, profileID)
	if err != nil {
		return nil, err
	}

	zone, err := zoneByID(ctx, s.db, ind.ZoneID)
	if err != nil && !errors.Is(err, ErrZoneNotFound) {
		return nil, err
	}
	ind.Zone = zone

	profile, err := profileByID(ctx, s.db, profileID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return ind, nil
		}
		return nil, err
	}
	ip := &models.IndicatorProfile{Profile: *profile}

	var owner models.IndicatorOwner
	if err := s.db.GetContext(ctx, &owner, `SELECT id, username, email FROM auth WHERE id = ?`, profile.UserID); err == nil {
		owner.Products = []models.Product{}
		if err := s.db.SelectContext(ctx, &owner.Products, `
			SELECT `+productColumns+` FROM products pr WHERE pr.user_id = ? ORDER BY pr.id`, owner.ID); err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
		ip.Auth = &owner
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load indicator owner: %w", err)
	}
	ind.Profile = ip

	return ind, nil
}

// UpdateColor recolors the indicator and broadcasts the change
func (s *IndicatorService) UpdateColor(ctx context.Context, profileID int64, color string, updatedBy int64) (*models.Indicator, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE indicators SET color = ?, updated_by = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?`,
		strings.TrimSpace(color), updatedBy, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to update indicator color: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrIndicatorNotFound
	}
	return s.publish(ctx, profileID)
}

// UpdatePosition moves the marker and broadcasts the change
func (s *IndicatorService) UpdatePosition(ctx context.Context, profileID int64, x, y, z float64, updatedBy int64) (*models.Indicator, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE indicators SET x = ?, y = ?, z = ?, updated_by = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ?`,
		x, y, z, updatedBy, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to update indicator position: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrIndicatorNotFound
	}
	return s.publish(ctx, profileID)
}

func (s *IndicatorService) publish(ctx context.Context, profileID int64) (*models.Indicator, error) {
	ind, err := s.indicatorRow(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.Broadcast(models.IndicatorEvent{Type: models.IndicatorUpdatedEvent, Indicator: ind})
	}
	s.log.Debug("indicator updated", zap.Int64("profile_id", profileID), zap.String("color", ind.Color))
	return ind, nil
}
