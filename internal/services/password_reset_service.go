package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"agroinnova-backend/internal/utils"
)

// PasswordResetService handles password recovery with emailed random passwords
type PasswordResetService struct {
	db     *sqlx.DB
	users  *UserService
	emails *EmailService
	policy AccountPolicy
	log    *zap.Logger
	now    func() time.Time
}

// NewPasswordResetService creates a new password reset service
func NewPasswordResetService(db *sqlx.DB, users *UserService, emails *EmailService, policy AccountPolicy, log *zap.Logger) *PasswordResetService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordResetService{
		db:     db,
		users:  users,
		emails: emails,
		policy: policy.withDefaults(),
		log:    log,
		now:    utcNow,
	}
}

// ForgotPassword stores a hashed random password and mails the plain one
func (s *PasswordResetService) ForgotPassword(ctx context.Context, usernameOrEmail string) error {
	user, err := s.users.GetUserByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		return err
	}
	if !user.IsEmailVerified {
		return ErrEmailNotVerified
	}
	if !user.IsPhoneVerified {
		return ErrPhoneNotVerified
	}

	password, err := utils.GenerateRandomPassword(utils.RandomPasswordLength)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.policy.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash random password: %w", err)
	}

	expires := s.now().Add(s.policy.RandomPasswordTTL)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO verification (user_id, random_password, random_password_expires)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			random_password = excluded.random_password,
			random_password_expires = excluded.random_password_expires,
			updated_at = CURRENT_TIMESTAMP`,
		user.ID, string(hash), expires)
	if err != nil {
		return fmt.Errorf("failed to store random password: %w", err)
	}

	if err := s.emails.SendRandomPassword(ctx, user.Email, user.Username, password, int(s.policy.RandomPasswordTTL.Minutes())); err != nil {
		return err
	}
	s.log.Info("random password issued", zap.Int64("user_id", user.ID))
	return nil
}

// ResetPassword replaces the password of the caller after checking the random password
func (s *PasswordResetService) ResetPassword(ctx context.Context, callerID int64, usernameOrEmail, randomPassword, newPassword string) error {
	user, err := s.users.GetUserByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		return err
	}
	if user.ID != callerID {
		return ErrForbidden
	}

	var stored struct {
		Hash    sql.NullString `db:"random_password"`
		Expires sql.NullTime   `db:"random_password_expires"`
	}
	err = s.db.GetContext(ctx, &stored, `
		SELECT random_password, random_password_expires FROM verification WHERE user_id = ?`, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidRandomPassword
		}
		return fmt.Errorf("failed to load random password: %w", err)
	}
	if !stored.Hash.Valid || !stored.Expires.Valid || !stored.Expires.Time.After(s.now()) {
		return ErrInvalidRandomPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Hash.String), []byte(randomPassword)) != nil {
		return ErrInvalidRandomPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.policy.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE auth SET password = ?, login_attempts = 0, locked_until = NULL, updated_at = ? WHERE id = ?`,
			string(hash), s.now(), user.ID); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE verification SET random_password = NULL, random_password_expires = NULL, updated_at = ?
			WHERE user_id = ?`, s.now(), user.ID); err != nil {
			return fmt.Errorf("failed to clear random password: %w", err)
		}
		return nil
	})
}
