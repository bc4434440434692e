package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/utils"
)

// VerificationService confirms email addresses and phone numbers with 6-digit codes
type VerificationService struct {
	db     *sqlx.DB
	users  *UserService
	emails *EmailService
	phones PhoneSender
	policy AccountPolicy
	log    *zap.Logger
	now    func() time.Time
}

// NewVerificationService creates a new verification service
func NewVerificationService(db *sqlx.DB, users *UserService, emails *EmailService, phones PhoneSender, policy AccountPolicy, log *zap.Logger) *VerificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &VerificationService{
		db:     db,
		users:  users,
		emails: emails,
		phones: phones,
		policy: policy.withDefaults(),
		log:    log,
		now:    utcNow,
	}
}

func (s *VerificationService) load(ctx context.Context, userID int64) (*models.Verification, error) {
	var v models.Verification
	err := s.db.GetContext(ctx, &v, `SELECT * FROM verification WHERE user_id = ?`, userID)
	if err == nil {
		return &v, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to load verification: %w", err)
	}
	// accounts created before the verification row existed
	if _, err := s.db.ExecContext(ctx, `INSERT INTO verification (user_id) VALUES (?)`, userID); err != nil {
		return nil, fmt.Errorf("failed to create verification: %w", err)
	}
	return &models.Verification{UserID: userID}, nil
}

// checkCode validates a stored code, counting failed attempts in column
func (s *VerificationService) checkCode(ctx context.Context, userID int64, stored *string, expires *time.Time, attempts int, column, given string) error {
	if stored == nil || expires == nil {
		return ErrInvalidCode
	}
	if attempts >= s.policy.MaxCodeAttempts {
		return ErrTooManyAttempts
	}
	if !expires.After(s.now()) {
		return ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(*stored), []byte(strings.TrimSpace(given))) == 1 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE verification SET %s = %s + 1, updated_at = ? WHERE user_id = ?`, column, column)
	if _, err := s.db.ExecContext(ctx, query, s.now(), userID); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	if attempts+1 >= s.policy.MaxCodeAttempts {
		return ErrTooManyAttempts
	}
	return ErrInvalidCode
}

// VerifyEmail marks the email verified when the code matches
func (s *VerificationService) VerifyEmail(ctx context.Context, username, code string) error {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return ErrEmailAlreadyVerified
	}

	v, err := s.load(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := s.checkCode(ctx, user.ID, v.EmailCode, v.EmailCodeExpires, v.EmailAttempts, "email_attempts", code); err != nil {
		return err
	}

	return inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE auth SET is_email_verified = TRUE, updated_at = ? WHERE id = ?`, s.now(), user.ID); err != nil {
			return fmt.Errorf("failed to mark email verified: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE verification SET email_code = NULL, email_code_expires = NULL, email_attempts = 0, updated_at = ?
			WHERE user_id = ?`, s.now(), user.ID); err != nil {
			return fmt.Errorf("failed to clear email code: %w", err)
		}
		return nil
	})
}

// ResendEmailCode issues a fresh email code and mails it
func (s *VerificationService) ResendEmailCode(ctx context.Context, username string) error {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return ErrEmailAlreadyVerified
	}
	if _, err := s.load(ctx, user.ID); err != nil {
		return err
	}

	code, err := utils.GenerateOTP(6)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `
		UPDATE verification SET email_code = ?, email_code_expires = ?, email_attempts = 0, updated_at = ?
		WHERE user_id = ?`, code, s.now().Add(s.policy.CodeTTL), s.now(), user.ID); err != nil {
		return fmt.Errorf("failed to store email code: %w", err)
	}

	return s.emails.SendVerificationCode(ctx, user.Email, user.Username, code, int(s.policy.CodeTTL.Minutes()))
}

// SendPhoneCode stores the phone number and sends it a code over WhatsApp
func (s *VerificationService) SendPhoneCode(ctx context.Context, username, phone string) error {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !user.IsEmailVerified {
		return ErrEmailNotVerified
	}
	if user.IsPhoneVerified {
		return ErrPhoneAlreadyVerified
	}

	phone = utils.FormatPhoneNumber(phone)
	var owners int
	if err := s.db.GetContext(ctx, &owners, `SELECT COUNT(*) FROM auth WHERE phone_number = ? AND id != ?`, phone, user.ID); err != nil {
		return fmt.Errorf("failed to check phone number: %w", err)
	}
	if owners > 0 {
		return ErrPhoneTaken
	}
	if _, err := s.load(ctx, user.ID); err != nil {
		return err
	}

	code, err := utils.GenerateOTP(6)
	if err != nil {
		return err
	}
	// nothing is stored unless the code reached the phone
	if err := s.deliverPhoneCode(ctx, user.Username, phone, code); err != nil {
		return err
	}
	return inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE auth SET phone_number = ?, updated_at = ? WHERE id = ?`, phone, s.now(), user.ID); err != nil {
			if isUniqueViolation(err) {
				return ErrPhoneTaken
			}
			return fmt.Errorf("failed to store phone number: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE verification SET phone_code = ?, phone_code_expires = ?, phone_attempts = 0, updated_at = ?
			WHERE user_id = ?`, code, s.now().Add(s.policy.CodeTTL), s.now(), user.ID); err != nil {
			return fmt.Errorf("failed to store phone code: %w", err)
		}
		return nil
	})
}

func (s *VerificationService) deliverPhoneCode(ctx context.Context, username, phone, code string) error {
	link := ""
	if s.policy.FrontendURL != "" {
		link = fmt.Sprintf("%s/verify-phone?username=%s&code=%s", s.policy.FrontendURL, username, code)
	}
	if err := s.phones.SendVerificationCode(ctx, phone, code, link); err != nil {
		s.log.Error("failed to send phone code", zap.String("username", username), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPhoneDeliveryFailed, err)
	}
	return nil
}

// VerifyPhone marks the phone verified when number and code match
func (s *VerificationService) VerifyPhone(ctx context.Context, username, phone, code string) error {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user.IsPhoneVerified {
		return ErrPhoneAlreadyVerified
	}
	if user.PhoneNumber == nil {
		return ErrPhoneNotRegistered
	}
	if *user.PhoneNumber != utils.FormatPhoneNumber(phone) {
		return ErrPhoneMismatch
	}

	v, err := s.load(ctx, user.ID)
	if err != nil {
		return err
	}
	if err := s.checkCode(ctx, user.ID, v.PhoneCode, v.PhoneCodeExpires, v.PhoneAttempts, "phone_attempts", code); err != nil {
		return err
	}

	return inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE auth SET is_phone_verified = TRUE, updated_at = ? WHERE id = ?`, s.now(), user.ID); err != nil {
			return fmt.Errorf("failed to mark phone verified: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE verification SET phone_code = NULL, phone_code_expires = NULL, phone_attempts = 0, updated_at = ?
			WHERE user_id = ?`, s.now(), user.ID); err != nil {
			return fmt.Errorf("failed to clear phone code: %w", err)
		}
		return nil
	})
}

// ResendPhoneCode issues a fresh code for the stored, unverified phone
func (s *VerificationService) ResendPhoneCode(ctx context.Context, username string) error {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user.IsPhoneVerified {
		return ErrPhoneAlreadyVerified
	}
	if user.PhoneNumber == nil || *user.PhoneNumber == "" {
		return ErrPhoneNotRegistered
	}
	if _, err := s.load(ctx, user.ID); err != nil {
		return err
	}

	code, err := utils.GenerateOTP(6)
	if err != nil {
		return err
	}
	if err := s.deliverPhoneCode(ctx, user.Username, *user.PhoneNumber, code); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `
		UPDATE verification SET phone_code = ?, phone_code_expires = ?, phone_attempts = 0, updated_at = ?
		WHERE user_id = ?`, code, s.now().Add(s.policy.CodeTTL), s.now(), user.ID); err != nil {
		return fmt.Errorf("failed to store phone code: %w", err)
	}
	return nil
}

// ClearExpired drops codes and random passwords whose TTL passed
func (s *VerificationService) ClearExpired(ctx context.Context) (int64, error) {
	now := s.now()
	var total int64
	queries := []string{
		`UPDATE verification SET email_code = NULL, email_code_expires = NULL
		 WHERE email_code_expires IS NOT NULL AND email_code_expires <= ?`,
		`UPDATE verification SET phone_code = NULL, phone_code_expires = NULL
		 WHERE phone_code_expires IS NOT NULL AND phone_code_expires <= ?`,
		`UPDATE verification SET random_password = NULL, random_password_expires = NULL
		 WHERE random_password_expires IS NOT NULL AND random_password_expires <= ?`,
	}
	for _, q := range queries {
		res, err := s.db.ExecContext(ctx, q, now)
		if err != nil {
			return total, fmt.Errorf("failed to clear expired codes: %w", err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}
