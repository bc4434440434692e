package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"agroinnova-backend/internal/models"
)

// TagService labels campiamigo profiles
type TagService struct {
	db *sqlx.DB
}

// NewTagService creates a new tag service
func NewTagService(db *sqlx.DB) *TagService {
	return &TagService{db: db}
}

func tagsByProfile(ctx context.Context, q sqlx.QueryerContext, profileID int64) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := sqlx.SelectContext(ctx, q, &tags, `SELECT * FROM tags WHERE profile_id = ? ORDER BY id`, profileID); err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	return tags, nil
}

// Create adds a tag to a profile
func (s *TagService) Create(ctx context.Context, profileID int64, req *models.CreateTagRequest) (*models.Tag, error) {
	if _, err := profileByID(ctx, s.db, profileID); err != nil {
		return nil, err
	}
	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = models.DefaultTagColor
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO tags (profile_id, name, color) VALUES (?, ?, ?)`,
		profileID, strings.TrimSpace(req.Name), color)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read tag id: %w", err)
	}

	var tag models.Tag
	if err := s.db.GetContext(ctx, &tag, `SELECT * FROM tags WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to load tag: %w", err)
	}
	return &tag, nil
}

// ListForProfile returns the tags of a profile
func (s *TagService) ListForProfile(ctx context.Context, profileID int64) ([]models.Tag, error) {
	if _, err := profileByID(ctx, s.db, profileID); err != nil {
		return nil, err
	}
	return tagsByProfile(ctx, s.db, profileID)
}
