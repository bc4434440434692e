package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"agroinnova-backend/internal/logger"
	"agroinnova-backend/internal/services"
	"agroinnova-backend/internal/utils"
)

const internalErrorMessage = "Error interno del servidor"

var (
	notFoundErrors = []error{
		services.ErrUserNotFound,
		services.ErrProfileNotFound,
		services.ErrSocioNotFound,
		services.ErrZoneNotFound,
		services.ErrIndicatorNotFound,
		services.ErrProductNotFound,
		services.ErrTipoNotFound,
		services.ErrSubtipoNotFound,
		services.ErrDenunciaNotFound,
		services.ErrNoDenuncias,
	}
	badRequestErrors = []error{
		services.ErrUsernameTaken,
		services.ErrEmailTaken,
		services.ErrPhoneTaken,
		services.ErrEmailNotVerified,
		services.ErrPhoneNotVerified,
		services.ErrEmailAlreadyVerified,
		services.ErrPhoneAlreadyVerified,
		services.ErrPhoneMismatch,
		services.ErrPhoneNotRegistered,
		services.ErrInvalidCode,
		services.ErrCodeExpired,
		services.ErrInvalidRandomPassword,
		services.ErrDuplicateIdentification,
		services.ErrDuplicateName,
		services.ErrSectionExists,
		services.ErrProductiveInfoMissing,
		services.ErrZoneExists,
		services.ErrNotCampiamigo,
		services.ErrProductExists,
		services.ErrReviewExists,
		services.ErrTipoExists,
		services.ErrSubtipoExists,
		services.ErrSubtipoMismatch,
		services.ErrInvalidFile,
		services.ErrTooManyFiles,
	}
)

// capitalize turns a Go-style error string into a user-facing message
func capitalize(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

func success(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

func failWithDetails(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
		"details": details,
	})
}

// respondError maps a service error onto its HTTP status. Unknown errors are reported and hidden.
func respondError(c *gin.Context, err error) {
	var (
		locked      *services.AccountLockedError
		credentials *services.InvalidCredentialsError
		section     *services.SectionExistsError
		validation  utils.ValidationErrors
	)

	switch {
	case errors.As(err, &validation):
		failWithDetails(c, http.StatusBadRequest, "Datos inválidos", validation.Messages())
		return
	case errors.As(err, &locked):
		failWithDetails(c, http.StatusTooManyRequests,
			fmt.Sprintf("Cuenta bloqueada temporalmente. Intenta de nuevo en %d minutos.", locked.Minutes),
			gin.H{"minutesRemaining": locked.Minutes})
		return
	case errors.As(err, &credentials):
		failWithDetails(c, http.StatusUnauthorized, capitalize(err.Error()),
			gin.H{"remainingAttempts": credentials.Remaining})
		return
	case errors.As(err, &section):
		fail(c, http.StatusBadRequest, section.Message)
		return
	case errors.Is(err, services.ErrAccountDisabled), errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, capitalize(err.Error()))
		return
	case errors.Is(err, services.ErrInvalidToken):
		fail(c, http.StatusUnauthorized, "Token inválido")
		return
	case errors.Is(err, services.ErrTooManyAttempts):
		fail(c, http.StatusTooManyRequests, capitalize(err.Error()))
		return
	case errors.Is(err, services.ErrPhoneDeliveryFailed):
		logger.ReportError(c, "phone code delivery failed", err)
		fail(c, http.StatusBadGateway, capitalize(services.ErrPhoneDeliveryFailed.Error()))
		return
	case errors.Is(err, services.ErrFileTooLarge):
		fail(c, http.StatusRequestEntityTooLarge, capitalize(err.Error()))
		return
	}

	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			fail(c, http.StatusNotFound, capitalize(target.Error()))
			return
		}
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			fail(c, http.StatusBadRequest, capitalize(err.Error()))
			return
		}
	}

	logger.ReportError(c, "request failed", err)
	fail(c, http.StatusInternalServerError, internalErrorMessage)
}

// bindJSON decodes and validates a JSON body, answering 400 itself on failure
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, http.StatusBadRequest, "Datos de solicitud inválidos")
		return false
	}
	return validate(c, dst)
}

// bindForm decodes and validates multipart or urlencoded fields
func bindForm(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBind(dst); err != nil {
		fail(c, http.StatusBadRequest, "Datos de formulario inválidos")
		return false
	}
	return validate(c, dst)
}

func validate(c *gin.Context, dst interface{}) bool {
	if err := utils.ValidateStruct(dst); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// pathID parses a positive integer path parameter, answering 400 itself on failure
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := utils.ParseID(c.Param(name))
	if err != nil {
		fail(c, http.StatusBadRequest, "ID inválido")
		return 0, false
	}
	return id, true
}

// formFile returns the uploaded file under field, or nil when none was sent
func formFile(c *gin.Context, field string) *multipart.FileHeader {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return fh
}

// formFiles returns every file uploaded under field
func formFiles(c *gin.Context, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[field]
}
