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

// CampesinoService records the characterization sections of a campesino, one row per section
type CampesinoService struct {
	db  *sqlx.DB
	log *zap.Logger
}

// NewCampesinoService creates a new campesino service
func NewCampesinoService(db *sqlx.DB, log *zap.Logger) *CampesinoService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CampesinoService{db: db, log: log}
}

func (s *CampesinoService) ensureUser(ctx context.Context, userID int64) error {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM auth WHERE id = ?)`, userID); err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

// sectionExists checks a one-row-per-user table
func sectionExists(ctx context.Context, q sqlx.QueryerContext, table string, userID int64) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE user_id = ?)`, table)
	if err := sqlx.GetContext(ctx, q, &exists, query, userID); err != nil {
		return false, fmt.Errorf("failed to check %s: %w", table, err)
	}
	return exists, nil
}

// RegisterPersonalData fills the profile of userID, creating it if missing
func (s *CampesinoService) RegisterPersonalData(ctx context.Context, userID int64, req *models.PersonalDataRequest) (*models.Profile, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		profile, err := profileByUserID(ctx, tx, userID)
		if err != nil && !errors.Is(err, ErrProfileNotFound) {
			return err
		}
		if profile != nil && profile.HasIdentification() {
			return &SectionExistsError{Message: "Los datos personales ya fueron registrados para este usuario."}
		}
		if err := checkProfileDuplicates(ctx, tx, userID, req.IdentificationNumber, req.FirstName, req.LastName); err != nil {
			return err
		}

		if profile == nil {
			if _, err := tx.ExecContext(ctx, `INSERT INTO user_profile (user_id) VALUES (?)`, userID); err != nil {
				return fmt.Errorf("failed to create profile: %w", err)
			}
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE user_profile SET
				first_name = ?, last_name = ?, identification_type = ?, identification_number = ?,
				birth_date = ?, gender = ?, biography = ?, direccion = ?, updated_at = CURRENT_TIMESTAMP
			WHERE user_id = ?`,
			strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), req.IdentificationType,
			strings.TrimSpace(req.IdentificationNumber), req.BirthDate, req.Gender, req.Biography,
			req.Direccion, userID)
		if err != nil {
			return fmt.Errorf("failed to save personal data: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profileByUserID(ctx, s.db, userID)
}

// RegisterFamilyComposition stores the household and its members in one transaction
func (s *CampesinoService) RegisterFamilyComposition(ctx context.Context, userID int64, req *models.FamilyCompositionRequest) (*models.FamilyComposition, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		exists, err := sectionExists(ctx, tx, "family_composition", userID)
		if err != nil {
			return err
		}
		if exists {
			return &SectionExistsError{Message: "La composición familiar ya fue registrada para este usuario."}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO family_composition (user_id, persons_in_home, dependent_persons, working_persons, predominant_labor)
			VALUES (?, ?, ?, ?, ?)`,
			userID, *req.PersonsInHome, *req.DependentPersons, *req.WorkingPersons, req.PredominantLabor); err != nil {
			if isUniqueViolation(err) {
				return &SectionExistsError{Message: "La composición familiar ya fue registrada para este usuario."}
			}
			return fmt.Errorf("failed to create family composition: %w", err)
		}

		for _, m := range req.FamilyMembers {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO family_member (
					user_id, relationship, gender, age, education_level, ethnic_group,
					has_disability, disability_detail, role_in_production
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				userID, strings.TrimSpace(m.Relationship), m.Gender, *m.Age, m.EducationLevel, m.EthnicGroup,
				m.HasDisability, m.DisabilityDetail, m.RoleInProduction); err != nil {
				return fmt.Errorf("failed to create family member: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.familyComposition(ctx, userID)
}

func (s *CampesinoService) familyComposition(ctx context.Context, userID int64) (*models.FamilyComposition, error) {
	var fc models.FamilyComposition
	if err := s.db.GetContext(ctx, &fc, `SELECT * FROM family_composition WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	fc.Members = []models.FamilyMember{}
	if err := s.db.SelectContext(ctx, &fc.Members, `
		SELECT id, user_id, relationship, gender, age, education_level,
		       COALESCE(ethnic_group, '') AS ethnic_group, has_disability,
		       COALESCE(disability_detail, '') AS disability_detail,
		       COALESCE(role_in_production, '') AS role_in_production, created_at, updated_at
		FROM family_member WHERE user_id = ? ORDER BY id`, userID); err != nil {
		return nil, fmt.Errorf("failed to load family members: %w", err)
	}
	return &fc, nil
}

// RegisterFarmProfile stores the farm section
func (s *CampesinoService) RegisterFarmProfile(ctx context.Context, userID int64, req *models.FarmProfileRequest) (*models.FarmProfile, error) {
	const exists = "El perfil de la finca ya fue registrado para este usuario."
	err := s.insertSection(ctx, userID, "farm_profile", exists, `
		INSERT INTO farm_profile (
			user_id, address, vereda, municipality, department, gps_coordinates, land_type,
			housing_location, total_area, area_pecuaria, area_agricola, area_forestal
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, strings.TrimSpace(req.Address), strings.TrimSpace(req.Vereda), strings.TrimSpace(req.Municipality),
		strings.TrimSpace(req.Department), req.GPSCoordinates, req.LandType, req.HousingLocation,
		*req.TotalArea, req.AreaPecuaria, req.AreaAgricola, req.AreaForestal)
	if err != nil {
		return nil, err
	}
	var fp models.FarmProfile
	if err := s.db.GetContext(ctx, &fp, `SELECT * FROM farm_profile WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	return &fp, nil
}

// RegisterInfrastructure stores services and access routes
func (s *CampesinoService) RegisterInfrastructure(ctx context.Context, userID int64, req *models.InfrastructureRequest) (*models.Infrastructure, error) {
	const exists = "La infraestructura ya fue registrada para este usuario."
	err := s.insertSection(ctx, userID, "infrastructure", exists, `
		INSERT INTO infrastructure (
			user_id, has_electricity, has_acueduct, has_gas, has_internet, has_sewer, has_public_lighting,
			other_service, main_route, secondary_route, tertiary_route, water_source,
			has_irrigation_system, irrigation_system_detail
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, req.HasElectricity, req.HasAcueduct, req.HasGas, req.HasInternet, req.HasSewer,
		req.HasPublicLighting, req.OtherService, req.MainRoute, req.SecondaryRoute, req.TertiaryRoute,
		req.WaterSource, *req.HasIrrigationSystem, req.IrrigationSystemDetail)
	if err != nil {
		return nil, err
	}
	var infra models.Infrastructure
	if err := s.db.GetContext(ctx, &infra, `SELECT * FROM infrastructure WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	return &infra, nil
}

// RegisterProductiveInfo stores the productive section
func (s *CampesinoService) RegisterProductiveInfo(ctx context.Context, userID int64, req *models.ProductiveInfoRequest) (*models.ProductiveInfo, error) {
	const exists = "La información productiva ya fue registrada para este usuario."
	err := s.insertSection(ctx, userID, "productive_info", exists, `
		INSERT INTO productive_info (
			user_id, economic_activity, agro_income_percentage, autoconsumo_percentage,
			consumption_frequency, consumption_change
		) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, req.EconomicActivity, req.AgroIncomePercentage, req.AutoconsumoPercentage,
		req.ConsumptionFrequency, req.ConsumptionChange)
	if err != nil {
		return nil, err
	}
	return s.productiveInfo(ctx, userID)
}

func (s *CampesinoService) productiveInfo(ctx context.Context, userID int64) (*models.ProductiveInfo, error) {
	var info models.ProductiveInfo
	if err := s.db.GetContext(ctx, &info, `SELECT * FROM productive_info WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	info.MainProducts = []models.MainProduct{}
	if err := s.db.SelectContext(ctx, &info.MainProducts,
		`SELECT * FROM main_product WHERE productive_info_id = ? ORDER BY id`, info.ID); err != nil {
		return nil, fmt.Errorf("failed to load main products: %w", err)
	}
	return &info, nil
}

// RegisterMainProducts stores the five main products under the productive info
func (s *CampesinoService) RegisterMainProducts(ctx context.Context, userID int64, req *models.MainProductsRequest) ([]models.MainProduct, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	var infoID int64
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &infoID, `SELECT id FROM productive_info WHERE user_id = ?`, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductiveInfoMissing
			}
			return fmt.Errorf("failed to load productive info: %w", err)
		}

		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM main_product WHERE productive_info_id = ?`, infoID); err != nil {
			return fmt.Errorf("failed to count main products: %w", err)
		}
		if count > 0 {
			return &SectionExistsError{Message: "Los productos principales ya fueron registrados para este usuario."}
		}

		for _, p := range req.Products {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO main_product (productive_info_id, product_name, average_monthly_quantity, unit)
				VALUES (?, ?, ?, ?)`,
				infoID, strings.TrimSpace(p.ProductName), *p.AverageMonthlyQuantity, strings.TrimSpace(p.Unit)); err != nil {
				return fmt.Errorf("failed to create main product: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	products := []models.MainProduct{}
	if err := s.db.SelectContext(ctx, &products,
		`SELECT * FROM main_product WHERE productive_info_id = ? ORDER BY id`, infoID); err != nil {
		return nil, fmt.Errorf("failed to load main products: %w", err)
	}
	return products, nil
}

// RegisterTechnologyPractice stores equipment and practices
func (s *CampesinoService) RegisterTechnologyPractice(ctx context.Context, userID int64, req *models.TechnologyPracticeRequest) (*models.TechnologyPractice, error) {
	const exists = "Las prácticas tecnológicas ya fueron registradas para este usuario."
	err := s.insertSection(ctx, userID, "technology_practice", exists, `
		INSERT INTO technology_practice (
			user_id, preparation_method, has_manual_fumigadora, has_motor_fumigadora, has_milking_equipment,
			has_guadana, has_manual_tools, has_electric_plant, has_tractor, has_motocultor, has_picadora,
			has_cold_tanks, has_motobomba, other_equipment, pest_control_method,
			received_training_for_biopreparados, interested_in_training, biopreparados_pest_frequency,
			biopreparados_fertilization_frequency, performs_multiplication, multiplication_detail
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, req.PreparationMethod, req.HasManualFumigadora, req.HasMotorFumigadora, req.HasMilkingEquipment,
		req.HasGuadana, req.HasManualTools, req.HasElectricPlant, req.HasTractor, req.HasMotocultor, req.HasPicadora,
		req.HasColdTanks, req.HasMotobomba, req.OtherEquipment, req.PestControlMethod,
		req.ReceivedTrainingForBiopreparados, req.InterestedInTraining, req.BiopreparadosPestFrequency,
		req.BiopreparadosFertilizationFrequency, req.PerformsMultiplication, req.MultiplicationDetail)
	if err != nil {
		return nil, err
	}
	var tp models.TechnologyPractice
	if err := s.db.GetContext(ctx, &tp, `SELECT * FROM technology_practice WHERE user_id = ?`, userID); err != nil {
		return nil, err
	}
	return &tp, nil
}

// insertSection runs a single-row insert guarded by the one-per-user rule
func (s *CampesinoService) insertSection(ctx context.Context, userID int64, table, existsMsg, query string, args ...interface{}) error {
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}
	return inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		exists, err := sectionExists(ctx, tx, table, userID)
		if err != nil {
			return err
		}
		if exists {
			return &SectionExistsError{Message: existsMsg}
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return &SectionExistsError{Message: existsMsg}
			}
			return fmt.Errorf("failed to create %s: %w", table, err)
		}
		s.log.Info("campesino section registered", zap.String("section", table), zap.Int64("user_id", userID))
		return nil
	})
}

// GetRecord returns every section registered for userID; missing sections are nil
func (s *CampesinoService) GetRecord(ctx context.Context, userID int64) (*models.CampesinoRecord, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	record := &models.CampesinoRecord{}

	profile, err := profileByUserID(ctx, s.db, userID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	record.Profile = profile

	socio, err := socioByUserID(ctx, s.db, userID)
	if err != nil && !errors.Is(err, ErrSocioNotFound) {
		return nil, err
	}
	record.SocioDemographic = socio

	if record.FamilyComposition, err = optional(s.familyComposition(ctx, userID)); err != nil {
		return nil, err
	}
	if record.ProductiveInfo, err = optional(s.productiveInfo(ctx, userID)); err != nil {
		return nil, err
	}

	var fp models.FarmProfile
	if err := s.db.GetContext(ctx, &fp, `SELECT * FROM farm_profile WHERE user_id = ?`, userID); err == nil {
		record.FarmProfile = &fp
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var infra models.Infrastructure
	if err := s.db.GetContext(ctx, &infra, `SELECT * FROM infrastructure WHERE user_id = ?`, userID); err == nil {
		record.Infrastructure = &infra
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	var tp models.TechnologyPractice
	if err := s.db.GetContext(ctx, &tp, `SELECT * FROM technology_practice WHERE user_id = ?`, userID); err == nil {
		record.TechnologyPractice = &tp
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return record, nil
}

// optional turns sql.ErrNoRows into a nil result
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}
