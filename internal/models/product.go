package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Upload limits for product assets
const (
	MaxProductImages = 3
	MaxProductVideos = 2
	MaxProductModels = 2
)

// Product is a campiamigo listing
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Image       string          `json:"image" db:"image"`
	GlbFile     string          `json:"glbFile" db:"glb_file"`
	Video       string          `json:"video" db:"video"`
	UserID      int64           `json:"userId" db:"user_id"`
	Rating      decimal.Decimal `json:"rating" db:"rating"`
	ReviewCount int             `json:"reviewCount" db:"review_count"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`

	Auth *ProductOwner `json:"auth,omitempty" db:"-"`
}

// ProductOwner is the account that published a product with its profile graph
type ProductOwner struct {
	ID       int64    `json:"id" db:"id"`
	Username string   `json:"username" db:"username"`
	Email    string   `json:"email" db:"email"`
	Profile  *Profile `json:"profile"`
}

// CreateProductRequest holds the text fields of the product multipart form
type CreateProductRequest struct {
	Name        string `form:"name" json:"name" validate:"required,notblank,max=150"`
	Description string `form:"description" json:"description" validate:"max=2000"`
	Price       string `form:"price" json:"price" validate:"required,decimal_positive"`
}

// ProductAssets holds the stored keys of a product's first image, video and model
type ProductAssets struct {
	Image   string
	Video   string
	GlbFile string
}

// ProductReview is a rating left by a user on a product
type ProductReview struct {
	ID        int64     `json:"id" db:"id"`
	ProductID int64     `json:"productId" db:"product_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	Username  string    `json:"username,omitempty" db:"username"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CreateReviewRequest is the body of POST /campiamigo/product/:id/reviews
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=1000"`
}
