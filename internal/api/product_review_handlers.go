package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agroinnova-backend/internal/middleware"
	"agroinnova-backend/internal/models"
)

// CreateReview rates a product as the caller
func (h *CampiamigoHandlers) CreateReview(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviews.Create(c.Request.Context(), productID, middleware.CurrentUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusCreated, "Reseña creada correctamente", review)
}

// ListReviews returns the reviews of a product
func (h *CampiamigoHandlers) ListReviews(c *gin.Context) {
	productID, ok := pathID(c, "id")
	if !ok {
		return
	}
	reviews, err := h.reviews.List(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, http.StatusOK, "", reviews)
}
