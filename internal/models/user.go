package models

import (
	"time"
)

// UserRole represents user roles in the system
type UserRole string

const (
	UserRoleUser       UserRole = "user"
	UserRoleAdmin      UserRole = "admin"
	UserRoleCampesino  UserRole = "campesino"
	UserRoleSupervisor UserRole = "supervisor"
)

// UserStatus represents user account status
type UserStatus string

const (
	UserStatusActive   UserStatus = "Activado"
	UserStatusInactive UserStatus = "Desactivado"
)

// AllRoles lists every role accepted by the auth table
var AllRoles = []string{
	string(UserRoleUser),
	string(UserRoleAdmin),
	string(UserRoleCampesino),
	string(UserRoleSupervisor),
}

// User represents a row of the auth table
type User struct {
	ID              int64      `json:"id" db:"id"`
	Username        string     `json:"username" db:"username"`
	PasswordHash    string     `json:"-" db:"password"`
	Email           string     `json:"email" db:"email"`
	PhoneNumber     *string    `json:"phoneNumber" db:"phone_number"`
	Role            UserRole   `json:"rol" db:"rol"`
	Status          UserStatus `json:"status" db:"status"`
	IsEmailVerified bool       `json:"isEmailVerified" db:"is_email_verified"`
	IsPhoneVerified bool       `json:"isPhoneVerified" db:"is_phone_verified"`
	LoginAttempts   int        `json:"-" db:"login_attempts"`
	LockedUntil     *time.Time `json:"-" db:"locked_until"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsActive reports whether the account may log in
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsLocked reports whether failed logins currently block the account
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// HasRole checks whether the user holds any of the given roles
func (u *User) HasRole(roles ...UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Verification holds the pending codes of one user
type Verification struct {
	ID                    int64      `db:"id"`
	UserID                int64      `db:"user_id"`
	EmailCode             *string    `db:"email_code"`
	EmailCodeExpires      *time.Time `db:"email_code_expires"`
	EmailAttempts         int        `db:"email_attempts"`
	PhoneCode             *string    `db:"phone_code"`
	PhoneCodeExpires      *time.Time `db:"phone_code_expires"`
	PhoneAttempts         int        `db:"phone_attempts"`
	RandomPassword        *string    `db:"random_password"`
	RandomPasswordExpires *time.Time `db:"random_password_expires"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

// HasPendingRandomPassword reports whether a reset password is stored and still valid
func (v *Verification) HasPendingRandomPassword(now time.Time) bool {
	return v.RandomPassword != nil && v.RandomPasswordExpires != nil && v.RandomPasswordExpires.After(now)
}

// Country is a seeded reference row
type Country struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Code      string `json:"code" db:"code"`
	PhoneCode string `json:"phoneCode" db:"phone_code"`
}

// UserSummary is the admin listing shape
type UserSummary struct {
	ID             int64      `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	Email          string     `json:"email" db:"email"`
	PhoneNumber    *string    `json:"phoneNumber" db:"phone_number"`
	Role           UserRole   `json:"rol" db:"rol"`
	Status         UserStatus `json:"status" db:"status"`
	ProfilePicture string     `json:"profilePicture" db:"profile_picture"`
}

// UserRegistration represents user registration data
type UserRegistration struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=128,password"`
	Role     string `json:"rol" validate:"omitempty,enum=selfRegisterRole"`
}

// UserLogin represents user login data
type UserLogin struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"passwordorrandomPassword" validate:"required"`
}

// VerifyEmailRequest confirms an email code
type VerifyEmailRequest struct {
	Username         string `json:"username" validate:"required"`
	VerificationCode string `json:"verificationCode" validate:"required,len=6,numeric"`
}

// UsernameRequest carries only a username (resend endpoints)
type UsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

// PhoneSendRequest asks for a phone verification code
type PhoneSendRequest struct {
	Username    string `json:"username" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
}

// PhoneVerifyRequest confirms a phone code
type PhoneVerifyRequest struct {
	Username         string `json:"username" validate:"required"`
	PhoneNumber      string `json:"phoneNumber" validate:"required,phone"`
	VerificationCode string `json:"verificationCode" validate:"required,len=6,numeric"`
}

// ForgotPasswordRequest starts a password recovery
type ForgotPasswordRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
}

// ResetPasswordRequest replaces a password using the emailed random password
type ResetPasswordRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	RandomPassword  string `json:"randomPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128,password"`
}

// UpdateStatusRequest toggles an account
type UpdateStatusRequest struct {
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Status string `json:"status" validate:"required,enum=userStatus"`
}

// AdminUpdateUserRequest edits account fields from the admin panel (multipart)
type AdminUpdateUserRequest struct {
	Username string `form:"username" json:"username" validate:"omitempty,min=3,max=30,username"`
	Email    string `form:"email" json:"email" validate:"omitempty,email,max=100"`
	Role     string `form:"rol" json:"rol" validate:"omitempty,enum=role"`
}
