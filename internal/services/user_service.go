package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"agroinnova-backend/config"
	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/utils"
)

// AccountPolicy groups the limits applied to logins and verification codes
type AccountPolicy struct {
	CodeTTL           time.Duration
	RandomPasswordTTL time.Duration
	MaxLoginAttempts  int
	LockDuration      time.Duration
	MaxCodeAttempts   int
	BcryptCost        int
	FrontendURL       string
}

// PolicyFromConfig builds the account policy from configuration
func PolicyFromConfig(cfg *config.Config) AccountPolicy {
	return AccountPolicy{
		CodeTTL:           time.Duration(cfg.VerificationCodeTTL) * time.Minute,
		RandomPasswordTTL: time.Duration(cfg.RandomPasswordTTL) * time.Minute,
		MaxLoginAttempts:  cfg.LoginMaxAttempts,
		LockDuration:      time.Duration(cfg.LoginLockMinutes) * time.Minute,
		MaxCodeAttempts:   cfg.MaxVerificationAttempt,
		BcryptCost:        bcrypt.DefaultCost,
		FrontendURL:       cfg.FrontendURL,
	}
}

func (p AccountPolicy) withDefaults() AccountPolicy {
	if p.CodeTTL <= 0 {
		p.CodeTTL = 10 * time.Minute
	}
	if p.RandomPasswordTTL <= 0 {
		p.RandomPasswordTTL = 5 * time.Minute
	}
	if p.MaxLoginAttempts <= 0 {
		p.MaxLoginAttempts = 5
	}
	if p.LockDuration <= 0 {
		p.LockDuration = 3 * time.Minute
	}
	if p.MaxCodeAttempts <= 0 {
		p.MaxCodeAttempts = 5
	}
	if p.BcryptCost == 0 {
		p.BcryptCost = bcrypt.DefaultCost
	}
	return p
}

// InvalidCredentialsError is a failed password check with the attempts left before lockout
type InvalidCredentialsError struct {
	Remaining int
}

func (e *InvalidCredentialsError) Error() string { return ErrInvalidCredentials.Error() }

// Is makes errors.Is(err, ErrInvalidCredentials) match
func (e *InvalidCredentialsError) Is(target error) bool { return target == ErrInvalidCredentials }

// LoginResult is returned by a successful login
type LoginResult struct {
	Token                  string
	User                   *models.User
	RequiresPasswordChange bool
}

const userColumns = `id, username, password, email, phone_number, rol, status,
	is_email_verified, is_phone_verified, login_attempts, locked_until, created_at, updated_at`

// UserService handles user-related business logic
type UserService struct {
	db     *sqlx.DB
	auth   *AuthService
	emails *EmailService
	policy AccountPolicy
	log    *zap.Logger
	now    func() time.Time
}

// NewUserService creates a new user service
func NewUserService(db *sqlx.DB, auth *AuthService, emails *EmailService, policy AccountPolicy, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{
		db:     db,
		auth:   auth,
		emails: emails,
		policy: policy.withDefaults(),
		log:    log,
		now:    utcNow,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM auth WHERE id = ?`, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM auth WHERE username = ?`, strings.TrimSpace(username))
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// GetUserByUsernameOrEmail accepts either identifier
func (s *UserService) GetUserByUsernameOrEmail(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	var user models.User
	err := s.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM auth WHERE username = ? OR email = ? LIMIT 1`,
		identifier, utils.NormalizeEmail(identifier))
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (s *UserService) checkAvailability(ctx context.Context, username, email string, excludeID int64) error {
	var count int
	if username != "" {
		if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM auth WHERE username = ? AND id != ?`, username, excludeID); err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if count > 0 {
			return ErrUsernameTaken
		}
	}
	if email != "" {
		if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM auth WHERE email = ? AND id != ?`, email, excludeID); err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if count > 0 {
			return ErrEmailTaken
		}
	}
	return nil
}

type newAccount struct {
	username string
	email    string
	password string
	role     models.UserRole
	verified bool
}

// createAccount writes auth, verification, an empty profile and default socio-demographic data
func (s *UserService) createAccount(ctx context.Context, acc newAccount) (int64, string, error) {
	if err := s.checkAvailability(ctx, acc.username, acc.email, 0); err != nil {
		return 0, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(acc.password), s.policy.BcryptCost)
	if err != nil {
		return 0, "", fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := utils.GenerateOTP(6)
	if err != nil {
		return 0, "", err
	}

	var userID int64
	err = inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO auth (username, password, email, rol, status, is_email_verified, is_phone_verified)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			acc.username, string(hash), acc.email, acc.role, models.UserStatusActive, acc.verified, acc.verified)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		userID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read user id: %w", err)
		}

		if acc.verified {
			_, err = tx.ExecContext(ctx, `INSERT INTO verification (user_id) VALUES (?)`, userID)
		} else {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO verification (user_id, email_code, email_code_expires)
				VALUES (?, ?, ?)`, userID, code, s.now().Add(s.policy.CodeTTL))
		}
		if err != nil {
			return fmt.Errorf("failed to create verification: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO user_profile (user_id) VALUES (?)`, userID); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}

		if err := insertDefaultSocioDemographic(ctx, tx, userID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, "", err
	}
	return userID, code, nil
}

func insertDefaultSocioDemographic(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO socio_demographic (
			user_id, residence_years, residence_months, self_identification, other_identification,
			ethnic_group, ethnic_group_detail, has_disability, disability_detail, conflict_victim, education_level
		) VALUES (?, 0, 0, ?, '', ?, '', FALSE, '', FALSE, ?)`,
		userID, models.DefaultSelfIdentification, models.DefaultEthnicGroup, models.DefaultEducationLevel)
	if err != nil {
		return fmt.Errorf("failed to create socio-demographic defaults: %w", err)
	}
	return nil
}

// Register creates a new account and mails the email verification code
func (s *UserService) Register(ctx context.Context, req *models.UserRegistration) (*models.User, error) {
	role := models.UserRole(req.Role)
	if role == "" {
		role = models.UserRoleUser
	}
	if role == models.UserRoleAdmin {
		return nil, ErrForbidden
	}

	email := utils.NormalizeEmail(req.Email)
	userID, code, err := s.createAccount(ctx, newAccount{
		username: strings.TrimSpace(req.Username),
		email:    email,
		password: req.Password,
		role:     role,
	})
	if err != nil {
		return nil, err
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.emails != nil {
		if err := s.emails.SendVerificationCode(ctx, user.Email, user.Username, code, int(s.policy.CodeTTL.Minutes())); err != nil {
			s.log.Warn("verification email failed after registration", zap.Int64("user_id", userID), zap.Error(err))
		}
	}

	s.log.Info("user registered", zap.Int64("user_id", userID), zap.String("rol", string(role)))
	return user, nil
}

// CreateAdmin creates a verified admin account
func (s *UserService) CreateAdmin(ctx context.Context, username, email, password string) (*models.User, error) {
	if errs := utils.ValidatePassword(password); len(errs) > 0 {
		return nil, fmt.Errorf("invalid password: %s", strings.Join(errs, ", "))
	}
	userID, _, err := s.createAccount(ctx, newAccount{
		username: strings.TrimSpace(username),
		email:    utils.NormalizeEmail(email),
		password: password,
		role:     models.UserRoleAdmin,
		verified: true,
	})
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, userID)
}

// Login authenticates with the account password or a pending random password
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, ErrAccountDisabled
	}
	if !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}
	if !user.IsPhoneVerified {
		return nil, ErrPhoneNotVerified
	}

	now := s.now()
	if user.IsLocked(now) {
		return nil, &AccountLockedError{Minutes: utils.MinutesUntil(*user.LockedUntil)}
	}

	var verification models.Verification
	err = s.db.GetContext(ctx, &verification, `SELECT * FROM verification WHERE user_id = ?`, user.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load verification: %w", err)
	}

	usedRandom := false
	if verification.HasPendingRandomPassword(now) &&
		bcrypt.CompareHashAndPassword([]byte(*verification.RandomPassword), []byte(password)) == nil {
		usedRandom = true
	} else if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, s.registerFailedLogin(ctx, user)
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE auth SET login_attempts = 0, locked_until = NULL, updated_at = ? WHERE id = ?`,
		now, user.ID); err != nil {
		return nil, fmt.Errorf("failed to reset login attempts: %w", err)
	}
	user.LoginAttempts = 0
	user.LockedUntil = nil

	token, err := s.auth.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.Int64("user_id", user.ID), zap.Bool("random_password", usedRandom))
	return &LoginResult{Token: token, User: user, RequiresPasswordChange: usedRandom}, nil
}

func (s *UserService) registerFailedLogin(ctx context.Context, user *models.User) error {
	var attempts int
	var lockedUntil *time.Time
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &attempts, `
			UPDATE auth SET login_attempts = login_attempts + 1, updated_at = ? WHERE id = ?
			RETURNING login_attempts`, s.now(), user.ID); err != nil {
			return fmt.Errorf("failed to record login attempt: %w", err)
		}
		if attempts < s.policy.MaxLoginAttempts {
			return nil
		}
		until := s.now().Add(s.policy.LockDuration)
		if _, err := tx.ExecContext(ctx, `
			UPDATE auth SET login_attempts = 0, locked_until = ?, updated_at = ? WHERE id = ?`,
			until, s.now(), user.ID); err != nil {
			return fmt.Errorf("failed to lock account: %w", err)
		}
		lockedUntil = &until
		return nil
	})
	if err != nil {
		return err
	}

	if lockedUntil != nil {
		s.log.Warn("account locked after failed logins", zap.Int64("user_id", user.ID))
		return &AccountLockedError{Minutes: utils.MinutesUntil(*lockedUntil)}
	}
	return &InvalidCredentialsError{Remaining: s.policy.MaxLoginAttempts - attempts}
}

// UpdateStatus activates or deactivates an account. Deactivation revokes open sessions.
func (s *UserService) UpdateStatus(ctx context.Context, userID int64, status models.UserStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE auth SET status = ?, updated_at = ? WHERE id = ?`, status, s.now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	if status == models.UserStatusInactive && s.auth != nil {
		if err := s.auth.RevokeUserSessions(ctx, userID); err != nil {
			s.log.Warn("failed to revoke sessions", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// ListUsers returns every account with its profile picture
func (s *UserService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	err := s.db.SelectContext(ctx, &users, `
		SELECT a.id, a.username, a.email, a.phone_number, a.rol, a.status,
		       COALESCE(p.profile_picture, '') AS profile_picture
		FROM auth a
		LEFT JOIN user_profile p ON p.user_id = a.id
		ORDER BY a.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// AdminUpdateUser edits username, email, role and optionally the profile picture
func (s *UserService) AdminUpdateUser(ctx context.Context, userID int64, req *models.AdminUpdateUserRequest, pictureKey string) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(req.Username)
	email := utils.NormalizeEmail(req.Email)
	if err := s.checkAvailability(ctx, username, email, userID); err != nil {
		return nil, err
	}
	if username == "" {
		username = user.Username
	}
	if email == "" {
		email = user.Email
	}
	role := user.Role
	if req.Role != "" {
		role = models.UserRole(req.Role)
	}

	err = inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE auth SET username = ?, email = ?, rol = ?, updated_at = ? WHERE id = ?`,
			username, email, role, s.now(), userID); err != nil {
			if isUniqueViolation(err) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("failed to update user: %w", err)
		}
		if pictureKey != "" {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO user_profile (user_id, profile_picture) VALUES (?, ?)
				ON CONFLICT(user_id) DO UPDATE SET profile_picture = excluded.profile_picture, updated_at = CURRENT_TIMESTAMP`,
				userID, pictureKey); err != nil {
				return fmt.Errorf("failed to update profile picture: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, userID)
}

// UnlockExpired clears lockouts whose time has passed
func (s *UserService) UnlockExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE auth SET locked_until = NULL, login_attempts = 0
		WHERE locked_until IS NOT NULL AND locked_until <= ?`, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to unlock accounts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
