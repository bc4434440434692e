package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/utils"
)

// ZoneUploads are the optional files of a new zone
type ZoneUploads struct {
	CityImage *multipart.FileHeader
	ZoneImage *multipart.FileHeader
	Video     *multipart.FileHeader
}

// ZoneService manages zones and the assignment of campiamigo profiles to them
type ZoneService struct {
	db       *sqlx.DB
	uploader *Uploader
	log      *zap.Logger
}

// NewZoneService creates a new zone service
func NewZoneService(db *sqlx.DB, uploader *Uploader, log *zap.Logger) *ZoneService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ZoneService{db: db, uploader: uploader, log: log}
}

func zoneByID(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Zone, error) {
	var z models.Zone
	if err := sqlx.GetContext(ctx, q, &z, `SELECT `+zoneColumns+` FROM zones z WHERE z.id = ?`, id); err != nil {
		return nil, notFound(err, ErrZoneNotFound)
	}
	return &z, nil
}

func zoneByName(ctx context.Context, q sqlx.QueryerContext, name, departamento string) (*models.Zone, error) {
	var z models.Zone
	err := sqlx.GetContext(ctx, q, &z, `
		SELECT `+zoneColumns+` FROM zones z WHERE z.name = ? AND z.departamento_name = ?`,
		strings.TrimSpace(name), strings.TrimSpace(departamento))
	if err != nil {
		return nil, notFound(err, ErrZoneNotFound)
	}
	return &z, nil
}

// Create stores a zone and its files. The name must be unique within the departamento.
func (s *ZoneService) Create(ctx context.Context, req *models.CreateZoneRequest, uploads ZoneUploads) (*models.Zone, error) {
	if _, err := zoneByName(ctx, s.db, req.Name, req.DepartamentoName); err == nil {
		return nil, ErrZoneExists
	} else if !errors.Is(err, ErrZoneNotFound) {
		return nil, err
	}

	batch := s.uploader.Batch(s.log)
	created := false
	defer func() {
		if !created {
			batch.Discard(ctx)
		}
	}()

	var assets models.ZoneAssets
	var err error
	if uploads.CityImage != nil {
		if assets.CityImage, err = batch.Store(ctx, uploads.CityImage, KindImage, "zones"); err != nil {
			return nil, err
		}
	}
	if uploads.ZoneImage != nil {
		if assets.ZoneImage, err = batch.Store(ctx, uploads.ZoneImage, KindImage, "zones"); err != nil {
			return nil, err
		}
	}
	if uploads.Video != nil {
		if assets.Video, err = batch.Store(ctx, uploads.Video, KindVideo, "zones"); err != nil {
			return nil, err
		}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO zones (name, tipo_zona, description, climate, departamento_name, city_image, zone_image, video)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(req.Name), req.TipoZona, utils.NullIfEmpty(req.Description), req.Climate,
		strings.TrimSpace(req.DepartamentoName), utils.NullIfEmpty(assets.CityImage),
		utils.NullIfEmpty(assets.ZoneImage), utils.NullIfEmpty(assets.Video))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrZoneExists
		}
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}
	created = true
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read zone id: %w", err)
	}

	s.log.Info("zone created", zap.Int64("zone_id", id), zap.String("name", req.Name))
	return s.Get(ctx, id)
}

// List returns the zones matching filter, each with its profiles
func (s *ZoneService) List(ctx context.Context, filter models.ZoneFilter) ([]models.Zone, error) {
	var where []string
	var args []interface{}
	if filter.Climate != "" {
		where = append(where, "z.climate = ?")
		args = append(args, filter.Climate)
	}
	if filter.DepartamentoName != "" {
		where = append(where, "z.departamento_name = ?")
		args = append(args, filter.DepartamentoName)
	}
	if filter.TipoZona != "" {
		where = append(where, "z.tipo_zona = ?")
		args = append(args, filter.TipoZona)
	}
	if filter.Description != "" {
		where = append(where, "z.description LIKE ?")
		args = append(args, "%"+filter.Description+"%")
	}

	query := `SELECT ` + zoneColumns + ` FROM zones z`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY z.id"

	zones := []models.Zone{}
	if err := s.db.SelectContext(ctx, &zones, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	if err := s.attachProfiles(ctx, zones); err != nil {
		return nil, err
	}
	return zones, nil
}

func (s *ZoneService) attachProfiles(ctx context.Context, zones []models.Zone) error {
	if len(zones) == 0 {
		return nil
	}
	ids := make([]int64, len(zones))
	for i := range zones {
		ids[i] = zones[i].ID
		zones[i].Profiles = []models.ZoneProfile{}
	}

	query, args, err := sqlx.In(`SELECT id, user_id, zone_id FROM user_profile WHERE zone_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("failed to build profile query: %w", err)
	}
	var rows []struct {
		models.ZoneProfile
		ZoneID int64 `db:"zone_id"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load zone profiles: %w", err)
	}

	byZone := make(map[int64][]models.ZoneProfile, len(zones))
	for _, r := range rows {
		byZone[r.ZoneID] = append(byZone[r.ZoneID], r.ZoneProfile)
	}
	for i := range zones {
		if profiles, ok := byZone[zones[i].ID]; ok {
			zones[i].Profiles = profiles
		}
	}
	return nil
}

// Get returns one zone with its profiles
func (s *ZoneService) Get(ctx context.Context, id int64) (*models.Zone, error) {
	zone, err := zoneByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	zones := []models.Zone{*zone}
	if err := s.attachProfiles(ctx, zones); err != nil {
		return nil, err
	}
	return &zones[0], nil
}

// Assign links a campiamigo profile to a zone, creating or updating the zone and
// finding or creating the profile's indicator, all in one transaction.
func (s *ZoneService) Assign(ctx context.Context, profileID int64, req *models.AssignZoneRequest) (*models.Zone, error) {
	var zoneID int64
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		profile, err := profileByID(ctx, tx, profileID)
		if err != nil {
			return err
		}
		if !profile.Campiamigo {
			return ErrNotCampiamigo
		}

		var current *models.Zone
		if profile.ZoneID != nil {
			current, err = zoneByID(ctx, tx, *profile.ZoneID)
			if err != nil && !errors.Is(err, ErrZoneNotFound) {
				return err
			}
		}

		if current != nil {
			zoneID = current.ID
			if err := updateZoneFields(ctx, tx, zoneID, req); err != nil {
				return err
			}
		} else {
			if zoneID, err = findOrCreateZone(ctx, tx, req); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE user_profile SET zone_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				zoneID, profileID); err != nil {
				return fmt.Errorf("failed to link profile to zone: %w", err)
			}
		}

		return upsertIndicator(ctx, tx, profileID, zoneID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("zone assigned", zap.Int64("profile_id", profileID), zap.Int64("zone_id", zoneID))
	return s.Get(ctx, zoneID)
}

func updateZoneFields(ctx context.Context, tx *sqlx.Tx, zoneID int64, req *models.AssignZoneRequest) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE zones SET name = ?, tipo_zona = ?, description = ?, climate = ?, departamento_name = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		strings.TrimSpace(req.Name), req.TipoZona, utils.NullIfEmpty(req.Description), req.Climate,
		strings.TrimSpace(req.DepartamentoName), zoneID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrZoneExists
		}
		return fmt.Errorf("failed to update zone: %w", err)
	}
	return nil
}

// findOrCreateZone reuses the zone with the same name and departamento
func findOrCreateZone(ctx context.Context, tx *sqlx.Tx, req *models.AssignZoneRequest) (int64, error) {
	existing, err := zoneByName(ctx, tx, req.Name, req.DepartamentoName)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, ErrZoneNotFound) {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO zones (name, tipo_zona, description, climate, departamento_name)
		VALUES (?, ?, ?, ?, ?)`,
		strings.TrimSpace(req.Name), req.TipoZona, utils.NullIfEmpty(req.Description), req.Climate,
		strings.TrimSpace(req.DepartamentoName))
	if err != nil {
		return 0, fmt.Errorf("failed to create zone: %w", err)
	}
	return res.LastInsertId()
}

// upsertIndicator moves the profile's indicator to zoneID or creates it
func upsertIndicator(ctx context.Context, tx *sqlx.Tx, profileID, zoneID int64) error {
	var indicatorID int64
	err := tx.GetContext(ctx, &indicatorID, `SELECT id FROM indicators WHERE user_id = ?`, profileID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO indicators (zone_id, user_id, color) VALUES (?, ?, ?)`,
			zoneID, profileID, models.DefaultIndicatorColor); err != nil {
			return fmt.Errorf("failed to create indicator: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to load indicator: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, `
			UPDATE indicators SET zone_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			zoneID, indicatorID); err != nil {
			return fmt.Errorf("failed to move indicator: %w", err)
		}
	}
	return nil
}
