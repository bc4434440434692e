package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agroinnova-backend/internal/middleware"
	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/services"
)

// ProfileHandlers serves the caller's own profile
type ProfileHandlers struct {
	profiles *services.ProfileService
	uploader *services.Uploader
}

// NewProfileHandlers creates profile handlers
func NewProfileHandlers(profiles *services.ProfileService, uploader *services.Uploader) *ProfileHandlers {
	return &ProfileHandlers{profiles: profiles, uploader: uploader}
}

// withPictureURL replaces the stored picture key with its public URL
func withPictureURL(p *models.Profile, uploader *services.Uploader) *models.Profile {
	if p != nil && p.ProfilePicture != "" {
		p.ProfilePicture = uploader.URL(p.ProfilePicture)
	}
	return p
}

// Me returns the caller's profile with zone and tags
func (h *ProfileHandlers) Me(c *gin.Context) {
	profile, err := h.profiles.Me(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "", withPictureURL(profile, h.uploader))
}

// UpdateProfile replaces the caller's personal data
func (h *ProfileHandlers) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if !bindForm(c, &req) {
		return
	}

	profile, err := h.profiles.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), &req, formFile(c, "profilePicture"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Perfil actualizado correctamente", withPictureURL(profile, h.uploader))
}

// UpdateMinimalProfile sets names and picture only
func (h *ProfileHandlers) UpdateMinimalProfile(c *gin.Context) {
	var req models.MinimalProfileUpdate
	if !bindForm(c, &req) {
		return
	}

	profile, err := h.profiles.UpdateMinimalProfile(c.Request.Context(), middleware.CurrentUserID(c), &req, formFile(c, "profilePicture"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Perfil actualizado correctamente", withPictureURL(profile, h.uploader))
}
