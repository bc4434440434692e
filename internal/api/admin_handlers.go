package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/services"
)

// AdminHandlers back the admin panel
type AdminHandlers struct {
	users     *services.UserService
	profiles  *services.ProfileService
	campesino *services.CampesinoService
	denuncias *services.DenunciaService
	uploader  *services.Uploader
}

// NewAdminHandlers creates admin handlers
func NewAdminHandlers(users *services.UserService, profiles *services.ProfileService, campesino *services.CampesinoService,
	denuncias *services.DenunciaService, uploader *services.Uploader) *AdminHandlers {
	return &AdminHandlers{
		users:     users,
		profiles:  profiles,
		campesino: campesino,
		denuncias: denuncias,
		uploader:  uploader,
	}
}

// ListUsers returns every account with its profile picture
func (h *AdminHandlers) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range users {
		users[i].ProfilePicture = h.uploader.URL(users[i].ProfilePicture)
	}
	success(c, http.StatusOK, "", users)
}

// UpdateUser edits username, email, rol and picture of an account
func (h *AdminHandlers) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.AdminUpdateUserRequest
	if !bindForm(c, &req) {
		return
	}

	pictureKey := ""
	if fh := formFile(c, "profilePicture"); fh != nil {
		if _, err := h.users.GetUserByID(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		key, err := h.uploader.Store(c.Request.Context(), fh, services.KindImage, "perfiles")
		if err != nil {
			respondError(c, err)
			return
		}
		pictureKey = key
	}

	user, err := h.users.AdminUpdateUser(c.Request.Context(), id, &req, pictureKey)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Usuario actualizado correctamente", user)
}

// GetProfile returns the profile of a user
func (h *AdminHandlers) GetProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	profile, err := h.profiles.GetByUserID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "", withPictureURL(profile, h.uploader))
}

// UpdateProfile edits another user's profile
func (h *AdminHandlers) UpdateProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.AdminProfileUpdate
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profiles.AdminUpdateProfile(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Perfil actualizado correctamente", withPictureURL(profile, h.uploader))
}

// GetSocioDemographic returns the socio-demographic row of a user
func (h *AdminHandlers) GetSocioDemographic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	socio, err := h.campesino.GetSocioDemographic(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "", socio)
}

// UpsertSocioDemographic creates or replaces the socio-demographic row of a user
func (h *AdminHandlers) UpsertSocioDemographic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.SocioDemographicRequest
	if !bindJSON(c, &req) {
		return
	}

	socio, created, err := h.campesino.UpsertSocioDemographic(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	if created {
		success(c, http.StatusCreated, "Información sociodemográfica creada", socio)
		return
	}
	success(c, http.StatusOK, "Información sociodemográfica actualizada", socio)
}

// ListDenuncias returns every anonymous complaint
func (h *AdminHandlers) ListDenuncias(c *gin.Context) {
	denuncias, err := h.denuncias.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "", denuncias)
}
