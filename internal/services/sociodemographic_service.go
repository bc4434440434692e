package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"agroinnova-backend/internal/models"
)

func socioByUserID(ctx context.Context, q sqlx.QueryerContext, userID int64) (*models.SocioDemographic, error) {
	var s models.SocioDemographic
	err := sqlx.GetContext(ctx, q, &s, `SELECT * FROM socio_demographic WHERE user_id = ?`, userID)
	if err != nil {
		return nil, notFound(err, ErrSocioNotFound)
	}
	return &s, nil
}

// GetSocioDemographic returns the socio-demographic data of an account
func (s *CampesinoService) GetSocioDemographic(ctx context.Context, userID int64) (*models.SocioDemographic, error) {
	return socioByUserID(ctx, s.db, userID)
}

// UpsertSocioDemographic writes the section, reporting whether a new row was created
func (s *CampesinoService) UpsertSocioDemographic(ctx context.Context, userID int64, req *models.SocioDemographicRequest) (*models.SocioDemographic, bool, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, false, err
	}

	created := false
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, err := socioByUserID(ctx, tx, userID)
		switch {
		case errors.Is(err, ErrSocioNotFound):
			created = true
			return insertSocio(ctx, tx, userID, req)
		case err != nil:
			return err
		default:
			return updateSocio(ctx, tx, userID, req)
		}
	})
	if err != nil {
		return nil, false, err
	}

	row, err := socioByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, false, err
	}
	return row, created, nil
}

// RegisterSocioDemographic is the campesino section: it replaces the sign-up defaults once
func (s *CampesinoService) RegisterSocioDemographic(ctx context.Context, userID int64, req *models.SocioDemographicRequest) (*models.SocioDemographic, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		existing, err := socioByUserID(ctx, tx, userID)
		switch {
		case errors.Is(err, ErrSocioNotFound):
			return insertSocio(ctx, tx, userID, req)
		case err != nil:
			return err
		case !existing.IsRegistrationDefault():
			return &SectionExistsError{Message: "La información sociodemográfica ya fue registrada para este usuario."}
		default:
			return updateSocio(ctx, tx, userID, req)
		}
	})
	if err != nil {
		return nil, err
	}
	return socioByUserID(ctx, s.db, userID)
}

func insertSocio(ctx context.Context, tx *sqlx.Tx, userID int64, req *models.SocioDemographicRequest) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO socio_demographic (
			user_id, residence_years, residence_months, self_identification, other_identification,
			ethnic_group, ethnic_group_detail, has_disability, disability_detail, conflict_victim, education_level
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, *req.ResidenceYears, *req.ResidenceMonths, req.SelfIdentification, req.OtherIdentification,
		req.EthnicGroup, req.EthnicGroupDetail, *req.HasDisability, req.DisabilityDetail,
		*req.ConflictVictim, req.EducationLevel)
	if err != nil {
		return fmt.Errorf("failed to create socio-demographic data: %w", err)
	}
	return nil
}

func updateSocio(ctx context.Context, tx *sqlx.Tx, userID int64, req *models.SocioDemographicRequest) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE socio_demographic SET
			residence_years = ?, residence_months = ?, self_identification = ?, other_identification = ?,
			ethnic_group = ?, ethnic_group_detail = ?, has_disability = ?, disability_detail = ?,
			conflict_victim = ?, education_level = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?`,
		*req.ResidenceYears, *req.ResidenceMonths, req.SelfIdentification, req.OtherIdentification,
		req.EthnicGroup, req.EthnicGroupDetail, *req.HasDisability, req.DisabilityDetail,
		*req.ConflictVictim, req.EducationLevel, userID)
	if err != nil {
		return fmt.Errorf("failed to update socio-demographic data: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
