package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"agroinnova-backend/internal/models"
)

// ReviewService stores product reviews and keeps the product rating in sync
type ReviewService struct {
	db *sqlx.DB
}

// NewReviewService creates a new review service
func NewReviewService(db *sqlx.DB) *ReviewService {
	return &ReviewService{db: db}
}

func productExists(ctx context.Context, q sqlx.QueryerContext, productID int64) error {
	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, productID); err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return ErrProductNotFound
	}
	return nil
}

// Create adds the user's review and recomputes rating and review_count in the same transaction
func (s *ReviewService) Create(ctx context.Context, productID, userID int64, req *models.CreateReviewRequest) (*models.ProductReview, error) {
	var reviewID int64
	err := inTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := productExists(ctx, tx, productID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO product_reviews (product_id, user_id, rating, comment) VALUES (?, ?, ?, ?)`,
			productID, userID, req.Rating, strings.TrimSpace(req.Comment))
		if err != nil {
			if isUniqueViolation(err) {
				return ErrReviewExists
			}
			return fmt.Errorf("failed to create review: %w", err)
		}
		if reviewID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read review id: %w", err)
		}

		var stats struct {
			Average float64 `db:"average"`
			Count   int     `db:"total"`
		}
		if err := tx.GetContext(ctx, &stats, `
			SELECT COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total
			FROM product_reviews WHERE product_id = ?`, productID); err != nil {
			return fmt.Errorf("failed to aggregate reviews: %w", err)
		}

		rating := decimal.NewFromFloat(stats.Average).Round(2)
		if _, err := tx.ExecContext(ctx, `
			UPDATE products SET rating = ?, review_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			rating.StringFixed(2), stats.Count, productID); err != nil {
			return fmt.Errorf("failed to update product rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var review models.ProductReview
	if err := s.db.GetContext(ctx, &review, `
		SELECT r.id, r.product_id, r.user_id, r.rating, COALESCE(r.comment, '') AS comment,
		       a.username, r.created_at, r.updated_at
		FROM product_reviews r
		INNER JOIN auth a ON a.id = r.user_id
		WHERE r.id = ?`, reviewID); err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	return &review, nil
}

// List returns the reviews of a product with the reviewer username, newest first
func (s *ReviewService) List(ctx context.Context, productID int64) ([]models.ProductReview, error) {
	if err := productExists(ctx, s.db, productID); err != nil {
		return nil, err
	}

	reviews := []models.ProductReview{}
	err := s.db.SelectContext(ctx, &reviews, `
		SELECT r.id, r.product_id, r.user_id, r.rating, COALESCE(r.comment, '') AS comment,
		       a.username, r.created_at, r.updated_at
		FROM product_reviews r
		INNER JOIN auth a ON a.id = r.user_id
		WHERE r.product_id = ?
		ORDER BY r.created_at DESC, r.id DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	return reviews, nil
}
