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

// CampiamigoHandlers serve zones, indicators, tags, products and reviews
type CampiamigoHandlers struct {
	zones      *services.ZoneService
	indicators *services.IndicatorService
	tags       *services.TagService
	products   *services.ProductService
	reviews    *services.ReviewService
	hub        *services.IndicatorHub
	uploader   *services.Uploader
}

// NewCampiamigoHandlers creates campiamigo handlers
func NewCampiamigoHandlers(zones *services.ZoneService, indicators *services.IndicatorService, tags *services.TagService,
	products *services.ProductService, reviews *services.ReviewService, hub *services.IndicatorHub, uploader *services.Uploader) *CampiamigoHandlers {
	return &CampiamigoHandlers{
		zones:      zones,
		indicators: indicators,
		tags:       tags,
		products:   products,
		reviews:    reviews,
		hub:        hub,
		uploader:   uploader,
	}
}

func (h *CampiamigoHandlers) zoneURLs(z *models.Zone) {
	if z == nil {
		return
	}
	z.CityImage = h.uploader.URL(z.CityImage)
	z.ZoneImage = h.uploader.URL(z.ZoneImage)
	z.Video = h.uploader.URL(z.Video)
	z.ModelPath = h.uploader.URL(z.ModelPath)
}

func (h *CampiamigoHandlers) productURLs(p *models.Product) {
	p.Image = h.uploader.URL(p.Image)
	p.Video = h.uploader.URL(p.Video)
	p.GlbFile = h.uploader.URL(p.GlbFile)
	if p.Auth != nil && p.Auth.Profile != nil {
		withPictureURL(p.Auth.Profile, h.uploader)
		h.zoneURLs(p.Auth.Profile.Zone)
	}
}

// CreateZone stores a zone with its optional images and video
func (h *CampiamigoHandlers) CreateZone(c *gin.Context) {
	var req models.CreateZoneRequest
	if !bindForm(c, &req) {
		return
	}

	zone, err := h.zones.Create(c.Request.Context(), &req, services.ZoneUploads{
		CityImage: formFile(c, "cityImage"),
		ZoneImage: formFile(c, "zoneImage"),
		Video:     formFile(c, "video"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.zoneURLs(zone)
	success(c, http.StatusCreated, "Zona creada correctamente.", zone)
}

// ListZones returns zones matching the query filters
func (h *CampiamigoHandlers) ListZones(c *gin.Context) {
	var filter models.ZoneFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		fail(c, http.StatusBadRequest, "Filtros inválidos")
		return
	}

	zones, err := h.zones.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range zones {
		h.zoneURLs(&zones[i])
	}
	success(c, http.StatusOK, "", zones)
}

// GetZone returns one zone with its profiles
func (h *CampiamigoHandlers) GetZone(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	zone, err := h.zones.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.zoneURLs(zone)
	success(c, http.StatusOK, "", zone)
}

// AssignZone assigns or updates the zone of a campiamigo profile
func (h *CampiamigoHandlers) AssignZone(c *gin.Context) {
	profileID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.AssignZoneRequest
	if !bindJSON(c, &req) {
		return
	}

	zone, err := h.zones.Assign(c.Request.Context(), profileID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.zoneURLs(zone)
	success(c, http.StatusOK, "Zona actualizada correctamente.", zone)
}

// GetIndicator returns the indicator of a profile with its graph
func (h *CampiamigoHandlers) GetIndicator(c *gin.Context) {
	profileID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	indicator, err := h.indicators.Get(c.Request.Context(), profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.zoneURLs(indicator.Zone)
	if indicator.Profile != nil {
		withPictureURL(&indicator.Profile.Profile, h.uploader)
		if indicator.Profile.Auth != nil {
			for i := range indicator.Profile.Auth.Products {
				h.productURLs(&indicator.Profile.Auth.Products[i])
			}
		}
	}
	success(c, http.StatusOK, "", indicator)
}

// UpdateIndicatorColor recolors an indicator
func (h *CampiamigoHandlers) UpdateIndicatorColor(c *gin.Context) {
	profileID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	var req models.IndicatorColorRequest
	if !bindJSON(c, &req) {
		return
	}

	updatedBy := middleware.CurrentUserID(c)
	if req.UpdatedBy != nil {
		updatedBy = *req.UpdatedBy
	}
	indicator, err := h.indicators.UpdateColor(c.Request.Context(), profileID, req.Color, updatedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Color del indicador actualizado", indicator)
}

// UpdateIndicatorPosition moves the 3D marker of an indicator
func (h *CampiamigoHandlers) UpdateIndicatorPosition(c *gin.Context) {
	profileID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	var req models.IndicatorPositionRequest
	if !bindJSON(c, &req) {
		return
	}

	indicator, err := h.indicators.UpdatePosition(c.Request.Context(), profileID,
		*req.X, *req.Y, *req.Z, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "Posición del indicador actualizada", indicator)
}

// IndicatorSocket upgrades to a websocket receiving indicator updates
func (h *CampiamigoHandlers) IndicatorSocket(c *gin.Context) {
	if err := h.hub.ServeWS(c.Writer, c.Request, middleware.CurrentUserID(c)); err != nil {
		logger.FromGin(c, nil).Warn("websocket upgrade failed", zap.Error(err))
	}
}

// CreateTag adds a tag to a profile
func (h *CampiamigoHandlers) CreateTag(c *gin.Context) {
	profileID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.CreateTagRequest
	if !bindJSON(c, &req) {
		return
	}

	tag, err := h.tags.Create(c.Request.Context(), profileID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusCreated, "Etiqueta creada correctamente", tag)
}

// CountTags returns the tags of a profile and how many there are
func (h *CampiamigoHandlers) CountTags(c *gin.Context) {
	profileID, ok := pathID(c, "id")
	if !ok {
		return
	}
	tags, err := h.tags.ListForProfile(c.Request.Context(), profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "", gin.H{"count": len(tags), "tags": tags})
}

// CreateProduct publishes a product for the owner in the path
func (h *CampiamigoHandlers) CreateProduct(c *gin.Context) {
	ownerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.CreateProductRequest
	if !bindForm(c, &req) {
		return
	}

	product, err := h.products.Create(c.Request.Context(), ownerID, &req, services.ProductUploads{
		Images: formFiles(c, "imagenes"),
		Videos: formFiles(c, "videos"),
		Models: formFiles(c, "modelos"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.productURLs(product)
	success(c, http.StatusCreated, "Producto creado correctamente", product)
}

// CountProducts returns how many products the owner has
func (h *CampiamigoHandlers) CountProducts(c *gin.Context) {
	ownerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	count, err := h.products.CountByOwner(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "", gin.H{"count": count})
}

// ListProducts returns every product with its owner graph
func (h *CampiamigoHandlers) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range products {
		h.productURLs(&products[i])
	}
	success(c, http.StatusOK, "", gin.H{"count": len(products), "products": products})
}

// GetProduct returns one product with its owner graph
func (h *CampiamigoHandlers) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.productURLs(product)
	success(c, http.StatusOK, "", product)
}
