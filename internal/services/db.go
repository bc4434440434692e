package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

func utcNow() time.Time { return time.Now().UTC() }

// isUniqueViolation reports whether err comes from a UNIQUE constraint
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// inTx runs fn inside a transaction and commits when it returns nil
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// notFound maps sql.ErrNoRows to the given domain error
func notFound(err error, domainErr error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domainErr
	}
	return err
}

// profileColumns selects a user_profile row with NULL text columns folded to ""
const profileColumns = `p.id, p.user_id,
	COALESCE(p.profile_picture, '') AS profile_picture,
	COALESCE(p.first_name, '') AS first_name,
	COALESCE(p.last_name, '') AS last_name,
	COALESCE(p.identification_type, '') AS identification_type,
	COALESCE(p.identification_number, '') AS identification_number,
	COALESCE(p.biography, '') AS biography,
	COALESCE(p.direccion, '') AS direccion,
	COALESCE(p.birth_date, '') AS birth_date,
	COALESCE(p.gender, '') AS gender,
	p.status, p.campiamigo, p.zone_id, p.created_at, p.updated_at`

// zoneColumns selects a zones row with NULL text columns folded to ""
const zoneColumns = `z.id, z.name, z.tipo_zona,
	COALESCE(z.description, '') AS description,
	z.climate, z.departamento_name,
	COALESCE(z.city_image, '') AS city_image,
	COALESCE(z.zone_image, '') AS zone_image,
	COALESCE(z.video, '') AS video,
	COALESCE(z.model_path, '') AS model_path,
	COALESCE(z.title_glb, '') AS title_glb,
	z.created_at, z.updated_at`

// productColumns selects a products row with NULL text columns folded to ""
const productColumns = `pr.id, pr.name,
	COALESCE(pr.description, '') AS description,
	pr.price,
	COALESCE(pr.image, '') AS image,
	COALESCE(pr.glb_file, '') AS glb_file,
	COALESCE(pr.video, '') AS video,
	pr.user_id, pr.rating, pr.review_count, pr.created_at, pr.updated_at`
