package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/services"
	"agroinnova-backend/internal/utils"
)

// DenunciaHandlers serve complaint categories and anonymous complaints
type DenunciaHandlers struct {
	denuncias *services.DenunciaService
}

// NewDenunciaHandlers creates denuncia handlers
func NewDenunciaHandlers(denuncias *services.DenunciaService) *DenunciaHandlers {
	return &DenunciaHandlers{denuncias: denuncias}
}

// CreateTipo adds a complaint category
func (h *DenunciaHandlers) CreateTipo(c *gin.Context) {
	var req models.CreateTipoDenunciaRequest
	if !bindForm(c, &req) {
		return
	}

	tipo, err := h.denuncias.CreateTipo(c.Request.Context(), &req, formFile(c, "flagImage"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusCreated, "Tipo de denuncia creado correctamente", tipo)
}

// CreateSubtipo adds a subcategory
func (h *DenunciaHandlers) CreateSubtipo(c *gin.Context) {
	var req models.CreateSubtipoDenunciaRequest
	if !bindForm(c, &req) {
		return
	}

	subtipo, err := h.denuncias.CreateSubtipo(c.Request.Context(), &req, formFile(c, "flagImage"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusCreated, "Subtipo de denuncia creado correctamente", subtipo)
}

// ListTipos returns every category
func (h *DenunciaHandlers) ListTipos(c *gin.Context) {
	tipos, err := h.denuncias.ListTipos(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "", tipos)
}

// ListSubtipos returns the subcategories, optionally of one tipo
func (h *DenunciaHandlers) ListSubtipos(c *gin.Context) {
	var tipoID int64
	if raw := c.Query("tipoDenunciaId"); raw != "" {
		id, err := utils.ParseID(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "ID de tipo de denuncia inválido")
			return
		}
		tipoID = id
	}

	subtipos, err := h.denuncias.ListSubtipos(c.Request.Context(), tipoID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "", subtipos)
}

// CreateAnonima files a complaint. The caller's identity is not passed on.
func (h *DenunciaHandlers) CreateAnonima(c *gin.Context) {
	var req models.CreateDenunciaRequest
	if !bindForm(c, &req) {
		return
	}

	clave, err := h.denuncias.Create(c.Request.Context(), &req, append(formFiles(c, "pruebas"), formFiles(c, "pruebas[]")...), formFile(c, "audio"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusCreated, "Denuncia registrada correctamente", gin.H{"claveUnica": clave})
}

// Consulta looks a complaint up by its key
func (h *DenunciaHandlers) Consulta(c *gin.Context) {
	clave := strings.TrimSpace(c.Query("claveUnica"))
	if clave == "" {
		fail(c, http.StatusBadRequest, "La clave única es obligatoria")
		return
	}

	consulta, err := h.denuncias.Consulta(c.Request.Context(), clave)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "", consulta)
}

// UpdateStatus moves a complaint to another review state
func (h *DenunciaHandlers) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.UpdateDenunciaStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	denuncia, err := h.denuncias.UpdateStatus(c.Request.Context(), id, models.DenunciaStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Estado de la denuncia actualizado", denuncia)
}
