package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/services"
)

// CampesinoHandlers register the sections of a campesino record, one request per section
type CampesinoHandlers struct {
	campesino *services.CampesinoService
}

// NewCampesinoHandlers creates campesino registration handlers
func NewCampesinoHandlers(campesino *services.CampesinoService) *CampesinoHandlers {
	return &CampesinoHandlers{campesino: campesino}
}

// sectionHandler binds T, resolves the :userId path and stores the section with register
func sectionHandler[T any, R any](message string, register func(*gin.Context, int64, *T) (R, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "userId")
		if !ok {
			return
		}
		var req T
		if !bindJSON(c, &req) {
			return
		}

		result, err := register(c, userID, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		success(c, http.StatusCreated, message, result)
	}
}

// PersonalData registers names and identification
func (h *CampesinoHandlers) PersonalData() gin.HandlerFunc {
	return sectionHandler("Datos personales registrados correctamente",
		func(c *gin.Context, userID int64, req *models.PersonalDataRequest) (*models.Profile, error) {
			return h.campesino.RegisterPersonalData(c.Request.Context(), userID, req)
		})
}

// SocioDemographic registers the socio-demographic section
func (h *CampesinoHandlers) SocioDemographic() gin.HandlerFunc {
	return sectionHandler("Información sociodemográfica registrada correctamente",
		func(c *gin.Context, userID int64, req *models.SocioDemographicRequest) (*models.SocioDemographic, error) {
			return h.campesino.RegisterSocioDemographic(c.Request.Context(), userID, req)
		})
}

// FamilyComposition registers the household and its members
func (h *CampesinoHandlers) FamilyComposition() gin.HandlerFunc {
	return sectionHandler("Composición familiar registrada correctamente",
		func(c *gin.Context, userID int64, req *models.FamilyCompositionRequest) (*models.FamilyComposition, error) {
			return h.campesino.RegisterFamilyComposition(c.Request.Context(), userID, req)
		})
}

// FarmProfile registers the farm location and land data
func (h *CampesinoHandlers) FarmProfile() gin.HandlerFunc {
	return sectionHandler("Perfil de la finca registrado correctamente",
		func(c *gin.Context, userID int64, req *models.FarmProfileRequest) (*models.FarmProfile, error) {
			return h.campesino.RegisterFarmProfile(c.Request.Context(), userID, req)
		})
}

// Infrastructure registers access routes and water
func (h *CampesinoHandlers) Infrastructure() gin.HandlerFunc {
	return sectionHandler("Infraestructura registrada correctamente",
		func(c *gin.Context, userID int64, req *models.InfrastructureRequest) (*models.Infrastructure, error) {
			return h.campesino.RegisterInfrastructure(c.Request.Context(), userID, req)
		})
}

// ProductiveInfo registers the productive profile
func (h *CampesinoHandlers) ProductiveInfo() gin.HandlerFunc {
	return sectionHandler("Información productiva registrada correctamente",
		func(c *gin.Context, userID int64, req *models.ProductiveInfoRequest) (*models.ProductiveInfo, error) {
			return h.campesino.RegisterProductiveInfo(c.Request.Context(), userID, req)
		})
}

// MainProducts registers exactly five main products
func (h *CampesinoHandlers) MainProducts() gin.HandlerFunc {
	return sectionHandler("Productos principales registrados correctamente",
		func(c *gin.Context, userID int64, req *models.MainProductsRequest) ([]models.MainProduct, error) {
			return h.campesino.RegisterMainProducts(c.Request.Context(), userID, req)
		})
}

// TechnologyPractice registers farming practices and equipment
func (h *CampesinoHandlers) TechnologyPractice() gin.HandlerFunc {
	return sectionHandler("Prácticas tecnológicas registradas correctamente",
		func(c *gin.Context, userID int64, req *models.TechnologyPracticeRequest) (*models.TechnologyPractice, error) {
			return h.campesino.RegisterTechnologyPractice(c.Request.Context(), userID, req)
		})
}

// Record returns every registered section of the user
func (h *CampesinoHandlers) Record(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	record, err := h.campesino.GetRecord(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "", record)
}
