package services

import (
	"context"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/testutil"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []models.IndicatorEvent
}

func (r *recordingBroadcaster) Broadcast(event models.IndicatorEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingBroadcaster) last() models.IndicatorEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type CampiamigoTestSuite struct {
	suite.Suite
	ctx        context.Context
	db         *sqlx.DB
	storage    *LocalStorage
	events     *recordingBroadcaster
	zones      *ZoneService
	indicators *IndicatorService
	tags       *TagService
	products   *ProductService
	reviews    *ReviewService
}

func (s *CampiamigoTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewTestDB(s.T())
	s.storage = NewLocalStorage(s.T().TempDir(), "http://localhost:2020/uploads")
	uploader := NewUploader(s.storage, 1<<20)
	s.events = &recordingBroadcaster{}

	s.zones = NewZoneService(s.db, uploader, nil)
	s.indicators = NewIndicatorService(s.db, s.events, nil)
	s.tags = NewTagService(s.db)
	s.products = NewProductService(s.db, uploader, nil)
	s.reviews = NewReviewService(s.db)
}

// account inserts a user with a profile and returns user and profile ids
func (s *CampiamigoTestSuite) account(username string, campiamigo bool) (int64, int64) {
	res, err := s.db.Exec(`INSERT INTO auth (username, password, email) VALUES (?, 'x', ?)`, username, username+"@campo.co")
	s.Require().NoError(err)
	userID, _ := res.LastInsertId()
	res, err = s.db.Exec(`INSERT INTO user_profile (user_id, first_name, last_name, campiamigo) VALUES (?, ?, 'Campo', ?)`,
		userID, username, campiamigo)
	s.Require().NoError(err)
	profileID, _ := res.LastInsertId()
	return userID, profileID
}

func assignRequest(name string) *models.AssignZoneRequest {
	return &models.AssignZoneRequest{Name: name, TipoZona: "vereda", Climate: "frio", DepartamentoName: "Boyacá"}
}

func (s *CampiamigoTestSuite) TestCreateZoneStoresFiles() {
	zone, err := s.zones.Create(s.ctx, &models.CreateZoneRequest{
		Name: "La Esperanza", TipoZona: "vereda", Climate: "frio", DepartamentoName: "Boyacá",
	}, ZoneUploads{
		CityImage: testutil.FileHeader(s.T(), "plaza.png", testutil.PNG),
		Video:     testutil.FileHeader(s.T(), "recorrido.mp4", testutil.MP4),
	})
	s.Require().NoError(err)
	s.Equal("La Esperanza", zone.Name)
	s.Contains(zone.CityImage, "zones/plaza-")
	s.Contains(zone.Video, "zones/recorrido-")
	s.Empty(zone.ZoneImage)
	s.Empty(zone.Profiles)

	_, err = s.zones.Create(s.ctx, &models.CreateZoneRequest{
		Name: "La Esperanza", TipoZona: "municipio", Climate: "calido", DepartamentoName: "Boyacá",
	}, ZoneUploads{})
	s.ErrorIs(err, ErrZoneExists)

	_, err = s.zones.Create(s.ctx, &models.CreateZoneRequest{
		Name: "Otra", TipoZona: "vereda", Climate: "frio", DepartamentoName: "Boyacá",
	}, ZoneUploads{CityImage: testutil.FileHeader(s.T(), "plaza.png", []byte("no es imagen"))})
	s.ErrorIs(err, ErrInvalidFile)
}

func (s *CampiamigoTestSuite) TestListZonesFilters() {
	for _, req := range []models.CreateZoneRequest{
		{Name: "Alta", TipoZona: "vereda", Climate: "frio", DepartamentoName: "Boyacá", Description: "montaña fría"},
		{Name: "Baja", TipoZona: "municipio", Climate: "calido", DepartamentoName: "Tolima"},
		{Name: "Media", TipoZona: "vereda", Climate: "calido", DepartamentoName: "Boyacá"},
	} {
		req := req
		_, err := s.zones.Create(s.ctx, &req, ZoneUploads{})
		s.Require().NoError(err)
	}

	all, err := s.zones.List(s.ctx, models.ZoneFilter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	boyaca, err := s.zones.List(s.ctx, models.ZoneFilter{DepartamentoName: "Boyacá", Climate: "calido"})
	s.Require().NoError(err)
	s.Require().Len(boyaca, 1)
	s.Equal("Media", boyaca[0].Name)

	described, err := s.zones.List(s.ctx, models.ZoneFilter{Description: "montaña"})
	s.Require().NoError(err)
	s.Require().Len(described, 1)
	s.Equal("Alta", described[0].Name)

	_, err = s.zones.Get(s.ctx, 999)
	s.ErrorIs(err, ErrZoneNotFound)
}

func (s *CampiamigoTestSuite) TestAssignZoneCreatesZoneAndIndicator() {
	_, profileID := s.account("rosario", true)

	zone, err := s.zones.Assign(s.ctx, profileID, assignRequest("El Roble"))
	s.Require().NoError(err)
	s.Require().Len(zone.Profiles, 1)
	s.Equal(profileID, zone.Profiles[0].ID)

	indicator, err := s.indicators.Get(s.ctx, profileID)
	s.Require().NoError(err)
	s.Equal(zone.ID, indicator.ZoneID)
	s.Equal(models.DefaultIndicatorColor, indicator.Color)
	s.Require().NotNil(indicator.Zone)
	s.Equal("El Roble", indicator.Zone.Name)

	// assigning again edits the linked zone instead of creating another one
	req := assignRequest("El Roble Alto")
	req.Climate = "calido"
	updated, err := s.zones.Assign(s.ctx, profileID, req)
	s.Require().NoError(err)
	s.Equal(zone.ID, updated.ID)
	s.Equal("El Roble Alto", updated.Name)
	s.Equal("calido", updated.Climate)

	var count int
	s.Require().NoError(s.db.Get(&count, `SELECT COUNT(*) FROM zones`))
	s.Equal(1, count)
	s.Require().NoError(s.db.Get(&count, `SELECT COUNT(*) FROM indicators`))
	s.Equal(1, count)
}

func (s *CampiamigoTestSuite) TestAssignZoneReusesExistingZone() {
	_, first := s.account("ana", true)
	_, second := s.account("beto", true)

	z1, err := s.zones.Assign(s.ctx, first, assignRequest("San Isidro"))
	s.Require().NoError(err)
	z2, err := s.zones.Assign(s.ctx, second, assignRequest("San Isidro"))
	s.Require().NoError(err)

	s.Equal(z1.ID, z2.ID)
	s.Len(z2.Profiles, 2)
}

func (s *CampiamigoTestSuite) TestAssignZoneRequiresCampiamigo() {
	_, profileID := s.account("nocampi", false)

	_, err := s.zones.Assign(s.ctx, profileID, assignRequest("Vereda"))
	s.ErrorIs(err, ErrNotCampiamigo)
	_, err = s.zones.Assign(s.ctx, 12345, assignRequest("Vereda"))
	s.ErrorIs(err, ErrProfileNotFound)
}

func (s *CampiamigoTestSuite) TestIndicatorUpdatesBroadcast() {
	adminID, _ := s.account("admin1", false)
	_, profileID := s.account("marta", true)
	_, err := s.zones.Assign(s.ctx, profileID, assignRequest("Guacamayas"))
	s.Require().NoError(err)

	indicator, err := s.indicators.UpdateColor(s.ctx, profileID, " red ", adminID)
	s.Require().NoError(err)
	s.Equal("red", indicator.Color)
	s.Require().NotNil(indicator.UpdatedBy)
	s.Equal(adminID, *indicator.UpdatedBy)

	event := s.events.last()
	s.Equal(models.IndicatorUpdatedEvent, event.Type)
	s.Equal("red", event.Indicator.Color)

	indicator, err = s.indicators.UpdatePosition(s.ctx, profileID, 1.5, -2, 3.25, adminID)
	s.Require().NoError(err)
	s.Equal(1.5, indicator.X)
	s.Equal(-2.0, indicator.Y)
	s.Equal(3.25, s.events.last().Indicator.Z)

	_, err = s.indicators.UpdateColor(s.ctx, 999, "blue", adminID)
	s.ErrorIs(err, ErrIndicatorNotFound)
	_, err = s.indicators.Get(s.ctx, 999)
	s.ErrorIs(err, ErrIndicatorNotFound)
}

func (s *CampiamigoTestSuite) TestTags() {
	_, profileID := s.account("felipe", true)

	tag, err := s.tags.Create(s.ctx, profileID, &models.CreateTagRequest{Name: "Orgánico"})
	s.Require().NoError(err)
	s.Equal(models.DefaultTagColor, tag.Color)

	_, err = s.tags.Create(s.ctx, profileID, &models.CreateTagRequest{Name: "Café", Color: "#6d4c41"})
	s.Require().NoError(err)

	tags, err := s.tags.ListForProfile(s.ctx, profileID)
	s.Require().NoError(err)
	s.Len(tags, 2)

	_, err = s.tags.ListForProfile(s.ctx, 999)
	s.ErrorIs(err, ErrProfileNotFound)
}

func (s *CampiamigoTestSuite) TestCreateProductWithAssets() {
	ownerID, profileID := s.account("productor", true)
	_, err := s.zones.Assign(s.ctx, profileID, assignRequest("Cómbita"))
	s.Require().NoError(err)
	_, err = s.tags.Create(s.ctx, profileID, &models.CreateTagRequest{Name: "Papa"})
	s.Require().NoError(err)

	product, err := s.products.Create(s.ctx, ownerID, &models.CreateProductRequest{
		Name: "Papa criolla", Description: "Bulto de 50 kg", Price: "85000.5",
	}, ProductUploads{
		Images: []*multipart.FileHeader{
			testutil.FileHeader(s.T(), "papa1.png", testutil.PNG),
			testutil.FileHeader(s.T(), "papa2.png", testutil.PNG),
		},
		Models: []*multipart.FileHeader{testutil.FileHeader(s.T(), "papa.gltf", []byte(`{"asset":{"version":"2.0"}}`))},
	})
	s.Require().NoError(err)

	s.True(decimal.RequireFromString("85000.50").Equal(product.Price))
	s.Contains(product.Image, "productos/imagenes/papa1-")
	s.Contains(product.GlbFile, "productos/modelos/papa-")
	s.Empty(product.Video)
	// papa2.png was validated but is not referenced by the row
	s.Equal(2, testutil.CountFiles(s.T(), s.storage.Root()))
	s.Require().NotNil(product.Auth)
	s.Equal("productor", product.Auth.Username)
	s.Require().NotNil(product.Auth.Profile)
	s.Require().NotNil(product.Auth.Profile.Zone)
	s.Equal("Cómbita", product.Auth.Profile.Zone.Name)
	s.Len(product.Auth.Profile.Tags, 1)

	_, err = s.products.Create(s.ctx, ownerID, &models.CreateProductRequest{Name: "Papa criolla", Price: "1"}, ProductUploads{})
	s.ErrorIs(err, ErrProductExists)

	count, err := s.products.CountByOwner(s.ctx, ownerID)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *CampiamigoTestSuite) TestCreateProductLimits() {
	ownerID, _ := s.account("limites", true)

	images := make([]*multipart.FileHeader, models.MaxProductImages+1)
	for i := range images {
		images[i] = testutil.FileHeader(s.T(), "img.png", testutil.PNG)
	}
	_, err := s.products.Create(s.ctx, ownerID, &models.CreateProductRequest{Name: "Mora", Price: "10"}, ProductUploads{Images: images})
	s.ErrorIs(err, ErrTooManyFiles)

	_, err = s.products.Create(s.ctx, 999, &models.CreateProductRequest{Name: "Mora", Price: "10"}, ProductUploads{})
	s.ErrorIs(err, ErrUserNotFound)

	_, err = s.products.Create(s.ctx, ownerID, &models.CreateProductRequest{Name: "Mora", Price: "-3"}, ProductUploads{})
	s.Error(err)

	_, err = s.products.Get(s.ctx, 999)
	s.ErrorIs(err, ErrProductNotFound)
}

func (s *CampiamigoTestSuite) TestCreateProductRemovesFilesOnFailure() {
	ownerID, _ := s.account("huerta", true)

	_, err := s.products.Create(s.ctx, ownerID, &models.CreateProductRequest{Name: "Arveja", Price: "4000"}, ProductUploads{
		Images: []*multipart.FileHeader{testutil.FileHeader(s.T(), "arveja.png", testutil.PNG)},
		Videos: []*multipart.FileHeader{testutil.FileHeader(s.T(), "arveja.mp4", []byte("<html><body>no</body></html>"))},
	})
	s.ErrorIs(err, ErrInvalidFile)
	s.Zero(testutil.CountFiles(s.T(), s.storage.Root()))

	_, err = s.db.Exec(`CREATE TRIGGER reject_products BEFORE INSERT ON products BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	s.Require().NoError(err)
	_, err = s.products.Create(s.ctx, ownerID, &models.CreateProductRequest{Name: "Arveja", Price: "4000"}, ProductUploads{
		Images: []*multipart.FileHeader{testutil.FileHeader(s.T(), "arveja.png", testutil.PNG)},
		Videos: []*multipart.FileHeader{testutil.FileHeader(s.T(), "arveja.mp4", testutil.MP4)},
	})
	s.Error(err)
	s.Zero(testutil.CountFiles(s.T(), s.storage.Root()))
}

func (s *CampiamigoTestSuite) TestCreateZoneRemovesFilesOnFailure() {
	_, err := s.zones.Create(s.ctx, &models.CreateZoneRequest{
		Name: "El Rosal", TipoZona: "vereda", Climate: "frio", DepartamentoName: "Boyacá",
	}, ZoneUploads{
		CityImage: testutil.FileHeader(s.T(), "ciudad.png", testutil.PNG),
		ZoneImage: testutil.FileHeader(s.T(), "zona.exe", testutil.PNG),
	})
	s.ErrorIs(err, ErrInvalidFile)
	s.Zero(testutil.CountFiles(s.T(), s.storage.Root()))
}

func (s *CampiamigoTestSuite) TestReviewsRecomputeRating() {
	ownerID, _ := s.account("vendedor", true)
	buyer1, _ := s.account("comprador1", false)
	buyer2, _ := s.account("comprador2", false)

	product, err := s.products.Create(s.ctx, ownerID, &models.CreateProductRequest{Name: "Queso campesino", Price: "12000"}, ProductUploads{})
	s.Require().NoError(err)

	review, err := s.reviews.Create(s.ctx, product.ID, buyer1, &models.CreateReviewRequest{Rating: 5, Comment: " Excelente "})
	s.Require().NoError(err)
	s.Equal("Excelente", review.Comment)
	s.Equal("comprador1", review.Username)

	_, err = s.reviews.Create(s.ctx, product.ID, buyer2, &models.CreateReviewRequest{Rating: 2})
	s.Require().NoError(err)

	_, err = s.reviews.Create(s.ctx, product.ID, buyer1, &models.CreateReviewRequest{Rating: 1})
	s.ErrorIs(err, ErrReviewExists)
	_, err = s.reviews.Create(s.ctx, 999, buyer1, &models.CreateReviewRequest{Rating: 1})
	s.ErrorIs(err, ErrProductNotFound)

	updated, err := s.products.Get(s.ctx, product.ID)
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("3.5").Equal(updated.Rating), updated.Rating.String())
	s.Equal(2, updated.ReviewCount)

	reviews, err := s.reviews.List(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Len(reviews, 2)
}

func (s *CampiamigoTestSuite) TestListProductsIncludesOwners() {
	ownerA, _ := s.account("a_owner", true)
	ownerB, _ := s.account("b_owner", true)
	for _, p := range []struct {
		owner int64
		name  string
	}{{ownerA, "Café"}, {ownerB, "Panela"}, {ownerA, "Cacao"}} {
		_, err := s.products.Create(s.ctx, p.owner, &models.CreateProductRequest{Name: p.name, Price: "1000"}, ProductUploads{})
		s.Require().NoError(err)
	}

	products, err := s.products.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(products, 3)
	for _, p := range products {
		s.Require().NotNil(p.Auth)
		s.Equal(p.UserID, p.Auth.ID)
	}
}

func TestCampiamigoTestSuite(t *testing.T) {
	suite.Run(t, new(CampiamigoTestSuite))
}
