package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agroinnova-backend/internal/logger"
	"agroinnova-backend/internal/middleware"
	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/services"
)

// AuthHandlers contains all authentication-related handlers
type AuthHandlers struct {
	users         *services.UserService
	auth          *services.AuthService
	verifications *services.VerificationService
	resets        *services.PasswordResetService
	countries     *services.CountryService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(users *services.UserService, auth *services.AuthService, verifications *services.VerificationService,
	resets *services.PasswordResetService, countries *services.CountryService) *AuthHandlers {
	return &AuthHandlers{
		users:         users,
		auth:          auth,
		verifications: verifications,
		resets:        resets,
		countries:     countries,
	}
}

// LoginData is the payload of a successful login
type LoginData struct {
	Token                  string       `json:"token"`
	User                   *models.User `json:"user"`
	RequiresPasswordChange bool         `json:"requiresPasswordChange"`
}

// Register handles user registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req models.UserRegistration
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	success(c, http.StatusCreated, "Usuario registrado. Revisa tu correo para verificar la cuenta.", user)
}

// VerifyEmail confirms the emailed code
func (h *AuthHandlers) VerifyEmail(c *gin.Context) {
	var req models.VerifyEmailRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.verifications.VerifyEmail(c.Request.Context(), req.Username, req.VerificationCode); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Correo electrónico verificado correctamente", nil)
}

// ResendEmailCode issues a new email code
func (h *AuthHandlers) ResendEmailCode(c *gin.Context) {
	var req models.UsernameRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.verifications.ResendEmailCode(c.Request.Context(), req.Username); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Se envió un nuevo código de verificación", nil)
}

// SendPhoneCode stores the phone number and sends its code over WhatsApp
func (h *AuthHandlers) SendPhoneCode(c *gin.Context) {
	var req models.PhoneSendRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.verifications.SendPhoneCode(c.Request.Context(), req.Username, req.PhoneNumber); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Código de verificación enviado por WhatsApp", nil)
}

// VerifyPhone confirms the phone code
func (h *AuthHandlers) VerifyPhone(c *gin.Context) {
	var req models.PhoneVerifyRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.verifications.VerifyPhone(c.Request.Context(), req.Username, req.PhoneNumber, req.VerificationCode); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Número de teléfono verificado correctamente", nil)
}

// ResendPhoneCode issues a new phone code for the stored number
func (h *AuthHandlers) ResendPhoneCode(c *gin.Context) {
	var req models.UsernameRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.verifications.ResendPhoneCode(c.Request.Context(), req.Username); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Se envió un nuevo código por WhatsApp", nil)
}

// Login handles user authentication
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.UserLogin
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Inicio de sesión exitoso"
	if result.RequiresPasswordChange {
		message = "Inicio de sesión con contraseña temporal. Debes cambiar tu contraseña."
	}
	success(c, http.StatusOK, message, LoginData{
		Token:                  result.Token,
		User:                   result.User,
		RequiresPasswordChange: result.RequiresPasswordChange,
	})
}

// ForgotPassword mails a random one-time password
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resets.ForgotPassword(c.Request.Context(), req.UsernameOrEmail); err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Se envió una contraseña temporal a tu correo electrónico", nil)
}

// ResetPassword replaces the caller's password using the random password
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.resets.ResetPassword(c.Request.Context(), middleware.CurrentUserID(c),
		req.UsernameOrEmail, req.RandomPassword, req.NewPassword)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Contraseña actualizada correctamente", nil)
}

// Logout revokes the presented token
func (h *AuthHandlers) Logout(c *gin.Context) {
	if err := h.auth.BlacklistToken(c.Request.Context(), c.GetString(middleware.TokenKey)); err != nil {
		logger.FromGin(c, nil).Warn("token revocation failed on logout", zap.Error(err))
	}
	success(c, http.StatusOK, "Sesión cerrada correctamente", nil)
}

// RefreshToken issues a new token and revokes the presented one
func (h *AuthHandlers) RefreshToken(c *gin.Context) {
	token, err := h.auth.RefreshToken(c.Request.Context(), c.GetString(middleware.TokenKey))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Token renovado", gin.H{"token": token})
}

// UpdateStatus activates or deactivates an account
func (h *AuthHandlers) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.users.UpdateStatus(c.Request.Context(), req.UserID, models.UserStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Estado actualizado",
		"status":  req.Status,
	})
}

// Countries lists the seeded countries
func (h *AuthHandlers) Countries(c *gin.Context) {
	countries, err := h.countries.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "", countries)
}
