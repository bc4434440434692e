package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/utils"
)

// ProductUploads are the files of the product multipart form
type ProductUploads struct {
	Images []*multipart.FileHeader
	Videos []*multipart.FileHeader
	Models []*multipart.FileHeader
}

// ProductService manages campiamigo products
type ProductService struct {
	db       *sqlx.DB
	uploader *Uploader
	log      *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(db *sqlx.DB, uploader *Uploader, log *zap.Logger) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{db: db, uploader: uploader, log: log}
}

// Create stores the product files concurrently and inserts the product for ownerID.
// Stored files are removed again when the product is not created.
func (s *ProductService) Create(ctx context.Context, ownerID int64, req *models.CreateProductRequest, uploads ProductUploads) (*models.Product, error) {
	if len(uploads.Images) > models.MaxProductImages ||
		len(uploads.Videos) > models.MaxProductVideos ||
		len(uploads.Models) > models.MaxProductModels {
		return nil, ErrTooManyFiles
	}

	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || !price.IsPositive() {
		return nil, fmt.Errorf("invalid price %q", req.Price)
	}

	var ownerExists bool
	if err := s.db.GetContext(ctx, &ownerExists, `SELECT EXISTS(SELECT 1 FROM auth WHERE id = ?)`, ownerID); err != nil {
		return nil, fmt.Errorf("failed to check owner: %w", err)
	}
	if !ownerExists {
		return nil, ErrUserNotFound
	}

	name := strings.TrimSpace(req.Name)
	var duplicates int
	if err := s.db.GetContext(ctx, &duplicates, `SELECT COUNT(*) FROM products WHERE name = ? AND user_id = ?`, name, ownerID); err != nil {
		return nil, fmt.Errorf("failed to check product name: %w", err)
	}
	if duplicates > 0 {
		return nil, ErrProductExists
	}

	batch := s.uploader.Batch(s.log)
	var assets models.ProductAssets
	created := false
	defer func() {
		if !created {
			batch.Discard(ctx)
			return
		}
		// only the first file of each kind is referenced by the row
		batch.Discard(ctx, assets.Image, assets.Video, assets.GlbFile)
	}()

	assets, err = s.storeAssets(ctx, batch, uploads)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO products (name, description, price, image, glb_file, video, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, utils.NullIfEmpty(req.Description), price.StringFixed(2),
		utils.NullIfEmpty(assets.Image), utils.NullIfEmpty(assets.GlbFile), utils.NullIfEmpty(assets.Video), ownerID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrProductExists
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	created = true
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read product id: %w", err)
	}

	s.log.Info("product created", zap.Int64("product_id", id), zap.Int64("owner_id", ownerID))
	return s.Get(ctx, id)
}

// storeAssets uploads every file in parallel and keeps the first key of each kind
func (s *ProductService) storeAssets(ctx context.Context, batch *UploadBatch, uploads ProductUploads) (models.ProductAssets, error) {
	images := make([]string, len(uploads.Images))
	videos := make([]string, len(uploads.Videos))
	modelKeys := make([]string, len(uploads.Models))

	g, gctx := errgroup.WithContext(ctx)
	schedule := func(files []*multipart.FileHeader, keys []string, kind FileKind, dir string) {
		for i, fh := range files {
			i, fh := i, fh
			g.Go(func() error {
				key, err := batch.Store(gctx, fh, kind, dir)
				if err != nil {
					return err
				}
				keys[i] = key
				return nil
			})
		}
	}
	schedule(uploads.Images, images, KindImage, "productos/imagenes")
	schedule(uploads.Videos, videos, KindVideo, "productos/videos")
	schedule(uploads.Models, modelKeys, KindModel, "productos/modelos")

	if err := g.Wait(); err != nil {
		return models.ProductAssets{}, err
	}

	first := func(keys []string) string {
		if len(keys) == 0 {
			return ""
		}
		return keys[0]
	}
	return models.ProductAssets{Image: first(images), Video: first(videos), GlbFile: first(modelKeys)}, nil
}

// CountByOwner returns how many products ownerID has published
func (s *ProductService) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM products WHERE user_id = ?`, ownerID); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// List returns every product with its owner graph
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := s.db.SelectContext(ctx, &products, `SELECT `+productColumns+` FROM products pr ORDER BY pr.id`); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if err := s.attachOwners(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns one product with its owner graph
func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	if err := s.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM products pr WHERE pr.id = ?`, id); err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	products := []models.Product{p}
	if err := s.attachOwners(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// attachOwners loads product → auth → profile → zone and tags with one query per level
func (s *ProductService) attachOwners(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ownerIDs := make([]int64, 0, len(products))
	seen := make(map[int64]bool)
	for _, p := range products {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			ownerIDs = append(ownerIDs, p.UserID)
		}
	}

	var owners []models.ProductOwner
	if err := s.selectIn(ctx, &owners, `SELECT id, username, email FROM auth WHERE id IN (?)`, ownerIDs); err != nil {
		return fmt.Errorf("failed to load product owners: %w", err)
	}

	var profiles []models.Profile
	if err := s.selectIn(ctx, &profiles, `SELECT `+profileColumns+` FROM user_profile p WHERE p.user_id IN (?)`, ownerIDs); err != nil {
		return fmt.Errorf("failed to load owner profiles: %w", err)
	}

	var zoneIDs, profileIDs []int64
	for _, p := range profiles {
		profileIDs = append(profileIDs, p.ID)
		if p.ZoneID != nil {
			zoneIDs = append(zoneIDs, *p.ZoneID)
		}
	}

	zones := map[int64]*models.Zone{}
	if len(zoneIDs) > 0 {
		var rows []models.Zone
		if err := s.selectIn(ctx, &rows, `SELECT `+zoneColumns+` FROM zones z WHERE z.id IN (?)`, zoneIDs); err != nil {
			return fmt.Errorf("failed to load owner zones: %w", err)
		}
		for i := range rows {
			zones[rows[i].ID] = &rows[i]
		}
	}

	tags := map[int64][]models.Tag{}
	if len(profileIDs) > 0 {
		var rows []models.Tag
		if err := s.selectIn(ctx, &rows, `SELECT * FROM tags WHERE profile_id IN (?) ORDER BY id`, profileIDs); err != nil {
			return fmt.Errorf("failed to load owner tags: %w", err)
		}
		for _, t := range rows {
			tags[t.ProfileID] = append(tags[t.ProfileID], t)
		}
	}

	profileByOwner := make(map[int64]*models.Profile, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		if p.ZoneID != nil {
			p.Zone = zones[*p.ZoneID]
		}
		p.Tags = tags[p.ID]
		if p.Tags == nil {
			p.Tags = []models.Tag{}
		}
		profileByOwner[p.UserID] = p
	}

	ownerByID := make(map[int64]*models.ProductOwner, len(owners))
	for i := range owners {
		owners[i].Profile = profileByOwner[owners[i].ID]
		ownerByID[owners[i].ID] = &owners[i]
	}
	for i := range products {
		products[i].Auth = ownerByID[products[i].UserID]
	}
	return nil
}

func (s *ProductService) selectIn(ctx context.Context, dest interface{}, query string, ids []int64) error {
	q, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return s.db.SelectContext(ctx, dest, s.db.Rebind(q), args...)
}
