package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/utils"
)

// ProfileService manages user_profile rows
type ProfileService struct {
	db       *sqlx.DB
	uploader *Uploader
	log      *zap.Logger
	now      func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(db *sqlx.DB, uploader *Uploader, log *zap.Logger) *ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{db: db, uploader: uploader, log: log, now: utcNow}
}

func profileByUserID(ctx context.Context, q sqlx.QueryerContext, userID int64) (*models.Profile, error) {
	var p models.Profile
	err := sqlx.GetContext(ctx, q, &p, `SELECT `+profileColumns+` FROM user_profile p WHERE p.user_id = ?`, userID)
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	return &p, nil
}

func profileByID(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Profile, error) {
	var p models.Profile
	err := sqlx.GetContext(ctx, q, &p, `SELECT `+profileColumns+` FROM user_profile p WHERE p.id = ?`, id)
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	return &p, nil
}

// checkProfileDuplicates rejects an identification number or full name already used by another user
func checkProfileDuplicates(ctx context.Context, q sqlx.QueryerContext, userID int64, identification, firstName, lastName string) error {
	var count int
	if identification = strings.TrimSpace(identification); identification != "" {
		if err := sqlx.GetContext(ctx, q, &count, `
			SELECT COUNT(*) FROM user_profile WHERE identification_number = ? AND user_id != ?`,
			identification, userID); err != nil {
			return fmt.Errorf("failed to check identification: %w", err)
		}
		if count > 0 {
			return ErrDuplicateIdentification
		}
	}
	if firstName != "" && lastName != "" {
		if err := sqlx.GetContext(ctx, q, &count, `
			SELECT COUNT(*) FROM user_profile
			WHERE LOWER(first_name) = LOWER(?) AND LOWER(last_name) = LOWER(?) AND user_id != ?`,
			strings.TrimSpace(firstName), strings.TrimSpace(lastName), userID); err != nil {
			return fmt.Errorf("failed to check name: %w", err)
		}
		if count > 0 {
			return ErrDuplicateName
		}
	}
	return nil
}

// withGraph attaches the zone and tags of p
func withGraph(ctx context.Context, q sqlx.QueryerContext, p *models.Profile) error {
	if p.ZoneID != nil {
		zone, err := zoneByID(ctx, q, *p.ZoneID)
		if err != nil && !errors.Is(err, ErrZoneNotFound) {
			return err
		}
		p.Zone = zone
	}
	tags, err := tagsByProfile(ctx, q, p.ID)
	if err != nil {
		return err
	}
	p.Tags = tags
	return nil
}

// Me returns the caller's profile with its zone and tags
func (s *ProfileService) Me(ctx context.Context, userID int64) (*models.Profile, error) {
	p, err := profileByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if err := withGraph(ctx, s.db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByUserID returns the profile of an account
func (s *ProfileService) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	return profileByUserID(ctx, s.db, userID)
}

func (s *ProfileService) storePicture(ctx context.Context, picture *multipart.FileHeader) (string, error) {
	if picture == nil {
		return "", nil
	}
	return s.uploader.Store(ctx, picture, KindImage, "perfiles")
}

// UpdateProfile replaces the personal data of the caller's profile
func (s *ProfileService) UpdateProfile(ctx context.Context, userID int64, req *models.ProfileUpdate, picture *multipart.FileHeader) (*models.Profile, error) {
	current, err := profileByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if err := checkProfileDuplicates(ctx, s.db, userID, req.IdentificationNumber, req.FirstName, req.LastName); err != nil {
		return nil, err
	}

	pictureKey, err := s.storePicture(ctx, picture)
	if err != nil {
		return nil, err
	}
	if pictureKey == "" {
		pictureKey = current.ProfilePicture
	}

	campiamigo := current.Campiamigo
	if req.Campiamigo != "" {
		campiamigo = utils.ParseFormBool(req.Campiamigo)
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE user_profile SET
			first_name = ?, last_name = ?, identification_type = ?, identification_number = ?,
			birth_date = ?, gender = ?, biography = ?, direccion = ?, campiamigo = ?,
			profile_picture = ?, updated_at = ?
		WHERE user_id = ?`,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), req.IdentificationType,
		strings.TrimSpace(req.IdentificationNumber), req.BirthDate, req.Gender, req.Biography,
		req.Direccion, campiamigo, utils.NullIfEmpty(pictureKey), s.now(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.log.Info("profile updated", zap.Int64("user_id", userID))
	return s.Me(ctx, userID)
}

// UpdateMinimalProfile sets only names and picture
func (s *ProfileService) UpdateMinimalProfile(ctx context.Context, userID int64, req *models.MinimalProfileUpdate, picture *multipart.FileHeader) (*models.Profile, error) {
	current, err := profileByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if err := checkProfileDuplicates(ctx, s.db, userID, "", req.FirstName, req.LastName); err != nil {
		return nil, err
	}

	pictureKey, err := s.storePicture(ctx, picture)
	if err != nil {
		return nil, err
	}
	if pictureKey == "" {
		pictureKey = current.ProfilePicture
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE user_profile SET first_name = ?, last_name = ?, profile_picture = ?, updated_at = ?
		WHERE user_id = ?`,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), utils.NullIfEmpty(pictureKey), s.now(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.Me(ctx, userID)
}

// AdminUpdateProfile edits another user's profile from the admin panel
func (s *ProfileService) AdminUpdateProfile(ctx context.Context, userID int64, req *models.AdminProfileUpdate) (*models.Profile, error) {
	current, err := profileByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if err := checkProfileDuplicates(ctx, s.db, userID, req.IdentificationNumber, "", ""); err != nil {
		return nil, err
	}

	identType := current.IdentificationType
	if req.IdentificationType != "" {
		identType = req.IdentificationType
	}
	identNumber := current.IdentificationNumber
	if n := strings.TrimSpace(req.IdentificationNumber); n != "" {
		identNumber = n
	}
	campiamigo := current.Campiamigo
	if req.Campiamigo != nil {
		campiamigo = *req.Campiamigo
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE user_profile SET
			first_name = ?, last_name = ?, birth_date = ?, gender = ?,
			identification_type = ?, identification_number = ?, campiamigo = ?, updated_at = ?
		WHERE user_id = ?`,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), req.BirthDate, req.Gender,
		utils.NullIfEmpty(identType), utils.NullIfEmpty(identNumber), campiamigo, s.now(), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profileByUserID(ctx, s.db, userID)
}
