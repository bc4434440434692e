package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"agroinnova-backend/internal/api"
	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/services"
	"agroinnova-backend/internal/testutil"
)

const testPassword = "Cosecha2024"

func init() {
	gin.SetMode(gin.TestMode)
}

type APITestSuite struct {
	suite.Suite
	db     *sqlx.DB
	deps   *api.Dependencies
	router http.Handler
	phones *testutil.RecordingPhoneSender
	mailer *services.LogMailer

	adminToken string
}

func (s *APITestSuite) SetupTest() {
	cfg := testutil.NewTestConfig()
	s.db = testutil.NewTestDB(s.T())
	s.phones = testutil.NewRecordingPhoneSender()
	s.mailer = services.NewLogMailer(nil)

	deps, err := api.Build(context.Background(), api.Options{
		Config:  cfg,
		DB:      s.db,
		Mailer:  s.mailer,
		Phones:  s.phones,
		Storage: services.NewLocalStorage(s.T().TempDir(), cfg.BaseURL+"/uploads"),
	})
	s.Require().NoError(err)
	s.deps = deps
	s.router = api.NewRouter(deps)

	_, err = deps.Users.CreateAdmin(context.Background(), "admin", "admin@agroinnova.co", testPassword)
	s.Require().NoError(err)
	s.adminToken = s.login("admin", testPassword)
}

func (s *APITestSuite) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	headers := map[string]string{}
	if token != "" {
		headers = testutil.Bearer(token)
	}
	return testutil.MakeRequest(s.router, method, "/api/v1"+path, body, headers)
}

func (s *APITestSuite) form(method, path, token string, fields map[string]string, files ...testutil.FormFile) *httptest.ResponseRecorder {
	body, contentType := testutil.MultipartBody(s.T(), fields, files...)
	headers := map[string]string{"Content-Type": contentType}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return testutil.MakeRequest(s.router, method, "/api/v1"+path, body, headers)
}

func (s *APITestSuite) ok(w *httptest.ResponseRecorder, status int) testutil.Envelope {
	s.T().Helper()
	return testutil.AssertSuccessResponse(s.T(), w, status)
}

func (s *APITestSuite) fails(w *httptest.ResponseRecorder, status int) testutil.Envelope {
	s.T().Helper()
	return testutil.AssertErrorResponse(s.T(), w, status)
}

func (s *APITestSuite) emailCode(username string) string {
	var code string
	s.Require().NoError(s.db.Get(&code, `
		SELECT v.email_code FROM verification v JOIN auth a ON a.id = v.user_id WHERE a.username = ?`, username))
	return code
}

func (s *APITestSuite) login(username, password string) string {
	w := s.do(http.MethodPost, "/auth/user/login", gin.H{"username": username, "passwordorrandomPassword": password}, "")
	var data api.LoginData
	s.ok(w, http.StatusOK).DecodeData(s.T(), &data)
	s.Require().NotEmpty(data.Token)
	return data.Token
}

func (s *APITestSuite) register(username, rol string) int64 {
	w := s.do(http.MethodPost, "/auth/user/register", gin.H{
		"username": username, "email": username + "@campo.co", "password": testPassword, "rol": rol,
	}, "")
	var user models.User
	s.ok(w, http.StatusCreated).DecodeData(s.T(), &user)
	return user.ID
}

func (s *APITestSuite) verify(username, phone string) {
	s.ok(s.do(http.MethodPut, "/auth/user/verify/email",
		gin.H{"username": username, "verificationCode": s.emailCode(username)}, ""), http.StatusOK)
	s.ok(s.do(http.MethodPost, "/auth/user/phone/send",
		gin.H{"username": username, "phoneNumber": phone}, ""), http.StatusOK)
	s.ok(s.do(http.MethodPut, "/auth/user/phone/verify", gin.H{
		"username": username, "phoneNumber": phone, "verificationCode": s.phones.LastCode(phone),
	}, ""), http.StatusOK)
}

// signup registers a fully verified account and returns its id and a token
func (s *APITestSuite) signup(username, phone, rol string) (int64, string) {
	id := s.register(username, rol)
	s.verify(username, phone)
	return id, s.login(username, testPassword)
}

func (s *APITestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, w.Code)

	var body map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(true, body["success"])
	s.Equal("ok", body["status"])
	s.EqualValues(0, body["clients"])
}

func (s *APITestSuite) TestProtectedRoutesRequireToken() {
	env := s.fails(s.do(http.MethodGet, "/user/me", nil, ""), http.StatusUnauthorized)
	s.NotEmpty(env.Error)
	s.fails(s.do(http.MethodGet, "/admin/usersProfile", nil, "garbage"), http.StatusUnauthorized)
}

func (s *APITestSuite) TestSignupLoginRefreshLogout() {
	id := s.register("ana_campo", "campesino")

	mail := s.mailer.Sent()
	s.Require().Len(mail, 1)
	s.Contains(mail[0].HTML, s.emailCode("ana_campo"))

	env := s.fails(s.do(http.MethodPost, "/auth/user/login",
		gin.H{"username": "ana_campo", "passwordorrandomPassword": testPassword}, ""), http.StatusBadRequest)
	s.NotEmpty(env.Error)

	s.verify("ana_campo", "+573001234567")
	token := s.login("ana_campo", testPassword)

	var profile models.Profile
	s.ok(s.do(http.MethodGet, "/user/me", nil, token), http.StatusOK).DecodeData(s.T(), &profile)
	s.Equal(id, profile.UserID)

	var refreshed struct {
		Token string `json:"token"`
	}
	s.ok(s.do(http.MethodPost, "/auth/user/refresh", nil, token), http.StatusOK).DecodeData(s.T(), &refreshed)
	s.Require().NotEmpty(refreshed.Token)
	s.NotEqual(token, refreshed.Token)
	s.fails(s.do(http.MethodGet, "/user/me", nil, token), http.StatusUnauthorized)

	s.ok(s.do(http.MethodPost, "/auth/user/logout", nil, refreshed.Token), http.StatusOK)
	s.fails(s.do(http.MethodGet, "/user/me", nil, refreshed.Token), http.StatusUnauthorized)
}

func (s *APITestSuite) TestRegisterValidation() {
	env := s.fails(s.do(http.MethodPost, "/auth/user/register", gin.H{
		"username": "a b", "email": "no-es-correo", "password": "corta",
	}, ""), http.StatusBadRequest)
	s.Equal("Datos inválidos", env.Error)
	var details []string
	s.Require().NoError(json.Unmarshal(env.Details, &details))
	s.Len(details, 3)
	s.Contains(details, "username solo puede contener letras, números, puntos, guiones y guiones bajos")

	s.fails(s.do(http.MethodPost, "/auth/user/register", gin.H{
		"username": "jefe", "email": "jefe@campo.co", "password": testPassword, "rol": "admin",
	}, ""), http.StatusBadRequest)

	s.register("duplicado", "user")
	s.fails(s.do(http.MethodPost, "/auth/user/register", gin.H{
		"username": "duplicado", "email": "otro@campo.co", "password": testPassword,
	}, ""), http.StatusBadRequest)
}

func (s *APITestSuite) TestLoginFailuresLockAccount() {
	s.signup("pedro", "+573001112233", "user")
	body := gin.H{"username": "pedro", "passwordorrandomPassword": "Equivocada1"}

	env := s.fails(s.do(http.MethodPost, "/auth/user/login", body, ""), http.StatusUnauthorized)
	var details struct {
		RemainingAttempts int `json:"remainingAttempts"`
	}
	s.Require().NoError(json.Unmarshal(env.Details, &details))
	s.Equal(2, details.RemainingAttempts)

	s.fails(s.do(http.MethodPost, "/auth/user/login", body, ""), http.StatusUnauthorized)
	env = s.fails(s.do(http.MethodPost, "/auth/user/login", body, ""), http.StatusTooManyRequests)
	s.Contains(string(env.Details), "minutesRemaining")

	// locked even with the right password
	s.fails(s.do(http.MethodPost, "/auth/user/login",
		gin.H{"username": "pedro", "passwordorrandomPassword": testPassword}, ""), http.StatusTooManyRequests)

	s.fails(s.do(http.MethodPost, "/auth/user/login",
		gin.H{"username": "nadie", "passwordorrandomPassword": testPassword}, ""), http.StatusNotFound)
}

func (s *APITestSuite) TestUpdateStatusRevokesSessions() {
	id, token := s.signup("luisa", "+573009998877", "user")

	s.fails(s.do(http.MethodPut, "/auth/user/updateStatus",
		gin.H{"userId": id, "status": "Desactivado"}, token), http.StatusForbidden)

	w := s.do(http.MethodPut, "/auth/user/updateStatus", gin.H{"userId": id, "status": "Desactivado"}, s.adminToken)
	env := s.ok(w, http.StatusOK)
	s.Equal("Estado actualizado", env.Message)
	s.Contains(w.Body.String(), `"status":"Desactivado"`)

	s.fails(s.do(http.MethodGet, "/user/me", nil, token), http.StatusUnauthorized)
	s.fails(s.do(http.MethodPost, "/auth/user/login",
		gin.H{"username": "luisa", "passwordorrandomPassword": testPassword}, ""), http.StatusForbidden)

	s.fails(s.do(http.MethodPut, "/auth/user/updateStatus",
		gin.H{"userId": 999, "status": "Activado"}, s.adminToken), http.StatusNotFound)
	s.fails(s.do(http.MethodPut, "/auth/user/updateStatus",
		gin.H{"userId": id, "status": "Suspendido"}, s.adminToken), http.StatusBadRequest)
}

func (s *APITestSuite) TestForgotPasswordFlow() {
	_, _ = s.signup("rosa", "+573005556677", "user")
	s.ok(s.do(http.MethodPost, "/auth/user/login/forgotPassword", gin.H{"usernameOrEmail": "rosa@campo.co"}, ""), http.StatusOK)

	msg, ok := s.mailer.Last("rosa@campo.co")
	s.Require().True(ok)
	_, rest, found := strings.Cut(msg.Text, "Contraseña temporal: ")
	s.Require().True(found, msg.Text)
	random, _, _ := strings.Cut(rest, "\n")
	s.Require().NotEmpty(random)

	w := s.do(http.MethodPost, "/auth/user/login", gin.H{"username": "rosa", "passwordorrandomPassword": random}, "")
	var data api.LoginData
	s.ok(w, http.StatusOK).DecodeData(s.T(), &data)
	s.True(data.RequiresPasswordChange)

	s.fails(s.do(http.MethodPost, "/auth/user/login/resetPassword", gin.H{
		"usernameOrEmail": "rosa", "randomPassword": "NoEsLaClave1", "newPassword": "Siembra2025",
	}, data.Token), http.StatusBadRequest)
	s.ok(s.do(http.MethodPost, "/auth/user/login/resetPassword", gin.H{
		"usernameOrEmail": "rosa", "randomPassword": random, "newPassword": "Siembra2025",
	}, data.Token), http.StatusOK)

	s.login("rosa", "Siembra2025")
	s.fails(s.do(http.MethodPost, "/auth/user/login/forgotPassword", gin.H{"usernameOrEmail": "nadie"}, ""), http.StatusNotFound)
}

func (s *APITestSuite) TestCountries() {
	var countries []models.Country
	s.ok(s.do(http.MethodGet, "/auth/user/countries", nil, ""), http.StatusOK).DecodeData(s.T(), &countries)
	s.Require().NotEmpty(countries)
	s.Equal("Argentina", countries[0].Name)
}

func (s *APITestSuite) TestAdminProfileAndSocioDemographic() {
	id, token := s.signup("marta", "+573004443322", "campesino")

	s.fails(s.do(http.MethodGet, "/admin/usersProfile", nil, token), http.StatusForbidden)

	var users []models.UserSummary
	s.ok(s.do(http.MethodGet, "/admin/usersProfile", nil, s.adminToken), http.StatusOK).DecodeData(s.T(), &users)
	s.Len(users, 2)

	var profile models.Profile
	s.ok(s.do(http.MethodPut, fmt.Sprintf("/admin/profile/%d", id), gin.H{
		"firstName": "Marta", "lastName": "Rojas", "birthDate": "1985-04-12", "gender": "Mujer", "campiamigo": true,
	}, s.adminToken), http.StatusOK).DecodeData(s.T(), &profile)
	s.Equal("Marta", profile.FirstName)
	s.True(profile.Campiamigo)

	socio := gin.H{
		"residenceYears": 10, "residenceMonths": 2, "selfIdentification": "Campesino(a)",
		"ethnicGroup": "Ninguno", "hasDisability": false, "conflictVictim": false, "educationLevel": "Primaria",
	}
	// sign-up already created default socio-demographic data
	s.ok(s.do(http.MethodPut, fmt.Sprintf("/admin/sociodemographic/%d", id), socio, s.adminToken), http.StatusOK)

	_, err := s.db.Exec(`DELETE FROM socio_demographic WHERE user_id = ?`, id)
	s.Require().NoError(err)
	s.ok(s.do(http.MethodPut, fmt.Sprintf("/admin/sociodemographic/%d", id), socio, s.adminToken), http.StatusCreated)

	s.fails(s.do(http.MethodGet, "/admin/profile/abc", nil, s.adminToken), http.StatusBadRequest)
	s.fails(s.do(http.MethodGet, "/admin/denuncias", nil, s.adminToken), http.StatusNotFound)
}

func (s *APITestSuite) TestCampesinoRegistration() {
	id, _ := s.signup("jorge", "+573006667788", "campesino")
	base := fmt.Sprintf("/campesino/register-campesino/%d", id)

	personal := gin.H{
		"firstName": "Jorge", "lastName": "Páez", "identificationType": "Cédula",
		"identificationNumber": "7070", "birthDate": "1979-09-30", "gender": "Hombre",
	}
	s.ok(s.do(http.MethodPost, base, personal, s.adminToken), http.StatusCreated)
	env := s.fails(s.do(http.MethodPost, base, personal, s.adminToken), http.StatusBadRequest)
	s.NotEmpty(env.Error)

	s.ok(s.do(http.MethodPost, base+"/farm-profile", gin.H{
		"address": "Km 2", "vereda": "La Esperanza", "municipality": "Pasca", "department": "Cundinamarca",
		"landType": "Propio", "housingLocation": "Dentro del predio", "totalArea": 2.5,
	}, s.adminToken), http.StatusCreated)

	s.fails(s.do(http.MethodPost, base+"/family-composition", gin.H{"personsInHome": -1}, s.adminToken), http.StatusBadRequest)

	var record models.CampesinoRecord
	s.ok(s.do(http.MethodGet, base, nil, s.adminToken), http.StatusOK).DecodeData(s.T(), &record)
	s.Require().NotNil(record.Profile)
	s.Equal("7070", record.Profile.IdentificationNumber)
	s.NotNil(record.FarmProfile)
	s.Nil(record.FamilyComposition)

	s.fails(s.do(http.MethodGet, "/campesino/register-campesino/999", nil, s.adminToken), http.StatusNotFound)
}

func (s *APITestSuite) TestCampiamigoZonesProductsAndReviews() {
	ownerID, ownerToken := s.signup("campi", "+573001010101", "campesino")

	var profile models.Profile
	s.ok(s.form(http.MethodPut, "/user/update-profile", ownerToken, map[string]string{
		"firstName": "Camilo", "lastName": "Pinzón", "identificationType": "Cédula", "identificationNumber": "5050",
		"birthDate": "1988-03-03", "gender": "Hombre", "campiamigo": "true",
	}, testutil.FormFile{Field: "profilePicture", Name: "yo.png", Content: testutil.PNG}), http.StatusOK).DecodeData(s.T(), &profile)
	s.True(profile.Campiamigo)
	s.Contains(profile.ProfilePicture, "http://localhost:2020/uploads/perfiles/yo-")

	var zone models.Zone
	s.ok(s.form(http.MethodPost, "/campiamigo/zone", s.adminToken, map[string]string{
		"name": "Páramo de Sumapaz", "tipoZona": "vereda", "climate": "frio", "departamentoName": "Cundinamarca",
	}, testutil.FormFile{Field: "cityImage", Name: "ciudad.png", Content: testutil.PNG}), http.StatusCreated).DecodeData(s.T(), &zone)
	s.Contains(zone.CityImage, "/uploads/")

	s.fails(s.form(http.MethodPost, "/campiamigo/zone", s.adminToken, map[string]string{
		"name": "X", "tipoZona": "planeta", "climate": "frio", "departamentoName": "Y",
	}), http.StatusBadRequest)
	s.fails(s.form(http.MethodPost, "/campiamigo/zone", ownerToken, map[string]string{"name": "X"}), http.StatusForbidden)

	var assigned models.Zone
	s.ok(s.do(http.MethodPut, fmt.Sprintf("/campiamigo/zone/%d", profile.ID), gin.H{
		"name": "Páramo de Sumapaz", "tipoZona": "vereda", "climate": "frio", "departamentoName": "Cundinamarca",
	}, s.adminToken), http.StatusOK).DecodeData(s.T(), &assigned)
	s.Equal(zone.ID, assigned.ID)

	var indicator models.Indicator
	s.ok(s.do(http.MethodGet, fmt.Sprintf("/campiamigo/indicator/%d", profile.ID), nil, ownerToken), http.StatusOK).
		DecodeData(s.T(), &indicator)
	s.Equal(zone.ID, indicator.ZoneID)

	var tag models.Tag
	s.ok(s.do(http.MethodPost, fmt.Sprintf("/campiamigo/tag/%d", profile.ID), gin.H{"name": "Orgánico"}, s.adminToken),
		http.StatusCreated).DecodeData(s.T(), &tag)
	s.Equal(models.DefaultTagColor, tag.Color)

	var tags struct {
		Count int          `json:"count"`
		Tags  []models.Tag `json:"tags"`
	}
	s.ok(s.do(http.MethodGet, fmt.Sprintf("/campiamigo/tag/%d/count", profile.ID), nil, s.adminToken), http.StatusOK).
		DecodeData(s.T(), &tags)
	s.Equal(1, tags.Count)

	var product models.Product
	s.ok(s.form(http.MethodPost, fmt.Sprintf("/campiamigo/product/%d", ownerID), s.adminToken, map[string]string{
		"name": "Papa criolla", "description": "Bulto de 50 kg", "price": "85000",
	},
		testutil.FormFile{Field: "imagenes", Name: "papa.png", Content: testutil.PNG},
		testutil.FormFile{Field: "videos", Name: "cosecha.mp4", Content: testutil.MP4},
	), http.StatusCreated).DecodeData(s.T(), &product)
	s.True(decimal.RequireFromString("85000").Equal(product.Price), product.Price.String())
	s.Contains(product.Image, "/uploads/")
	s.Contains(product.Video, "/uploads/")

	s.fails(s.form(http.MethodPost, fmt.Sprintf("/campiamigo/product/%d", ownerID), s.adminToken, map[string]string{
		"name": "Papa criolla", "price": "85000",
	}), http.StatusBadRequest)

	_, buyerToken := s.signup("comprador", "+573002020202", "user")
	review := gin.H{"rating": 4, "comment": "Muy buena"}
	s.ok(s.do(http.MethodPost, fmt.Sprintf("/campiamigo/product/%d/reviews", product.ID), review, buyerToken), http.StatusCreated)
	s.fails(s.do(http.MethodPost, fmt.Sprintf("/campiamigo/product/%d/reviews", product.ID), review, buyerToken), http.StatusBadRequest)
	s.fails(s.do(http.MethodPost, fmt.Sprintf("/campiamigo/product/%d/reviews", product.ID), gin.H{"rating": 9}, buyerToken), http.StatusBadRequest)

	var reviews []models.ProductReview
	s.ok(s.do(http.MethodGet, fmt.Sprintf("/campiamigo/product/%d/reviews", product.ID), nil, ""), http.StatusOK).
		DecodeData(s.T(), &reviews)
	s.Require().Len(reviews, 1)
	s.Equal("Muy buena", reviews[0].Comment)

	var all struct {
		Count    int              `json:"count"`
		Products []models.Product `json:"products"`
	}
	s.ok(s.do(http.MethodGet, "/campiamigo/products/all", nil, ""), http.StatusOK).DecodeData(s.T(), &all)
	s.Require().Equal(1, all.Count)
	s.Equal(1, all.Products[0].ReviewCount)
	s.True(decimal.RequireFromString("4").Equal(all.Products[0].Rating), all.Products[0].Rating.String())

	var count struct {
		Count int `json:"count"`
	}
	s.ok(s.do(http.MethodGet, fmt.Sprintf("/campiamigo/product/%d/count", ownerID), nil, ""), http.StatusOK).DecodeData(s.T(), &count)
	s.Equal(1, count.Count)

	s.fails(s.do(http.MethodGet, "/campiamigo/product/999", nil, ""), http.StatusNotFound)
}

func (s *APITestSuite) TestDenuncias() {
	_, token := s.signup("testigo", "+573003030303", "user")

	var tipos []models.TipoDenuncia
	s.ok(s.do(http.MethodGet, "/denuncias/tipos", nil, ""), http.StatusOK).DecodeData(s.T(), &tipos)
	s.Require().Len(tipos, 3)

	var subtipos []models.SubtipoDenuncia
	s.ok(s.do(http.MethodGet, fmt.Sprintf("/denuncias/subtipos?tipoDenunciaId=%d", tipos[0].ID), nil, ""), http.StatusOK).
		DecodeData(s.T(), &subtipos)
	s.Require().NotEmpty(subtipos)
	s.fails(s.do(http.MethodGet, "/denuncias/subtipos?tipoDenunciaId=x", nil, ""), http.StatusBadRequest)

	s.fails(s.form(http.MethodPost, "/denuncias/agregar_tipos", token, map[string]string{"nombre": "Laboral"}), http.StatusForbidden)
	s.ok(s.form(http.MethodPost, "/denuncias/agregar_tipos", s.adminToken, map[string]string{"nombre": "Laboral"},
		testutil.FormFile{Field: "flagImage", Name: "bandera.png", Content: testutil.PNG}), http.StatusCreated)

	s.fails(s.form(http.MethodPost, "/denuncias/anonimas", "", map[string]string{"descripcion": "x"}), http.StatusUnauthorized)

	var created struct {
		ClaveUnica string `json:"claveUnica"`
	}
	s.ok(s.form(http.MethodPost, "/denuncias/anonimas", token, map[string]string{
		"descripcion":       "Quema de basuras junto al río",
		"direccion":         "Vereda La Palma",
		"tipoDenunciaId":    fmt.Sprint(tipos[0].ID),
		"subtipoDenunciaId": fmt.Sprint(subtipos[0].ID),
	},
		testutil.FormFile{Field: "pruebas[]", Name: "humo.png", Content: testutil.PNG},
		testutil.FormFile{Field: "pruebas", Name: "video.mp4", Content: testutil.MP4},
	), http.StatusCreated).DecodeData(s.T(), &created)
	s.Require().NotEmpty(created.ClaveUnica)

	s.fails(s.do(http.MethodGet, "/denuncias/anonimas/consulta", nil, ""), http.StatusBadRequest)
	s.fails(s.do(http.MethodGet, "/denuncias/anonimas/consulta?claveUnica=desconocida", nil, ""), http.StatusNotFound)

	var consulta models.DenunciaConsulta
	s.ok(s.do(http.MethodGet, "/denuncias/anonimas/consulta?claveUnica="+url.QueryEscape(created.ClaveUnica), nil, ""),
		http.StatusOK).DecodeData(s.T(), &consulta)
	s.Equal(models.DenunciaStatusPending, consulta.Status)
	s.Len(consulta.Pruebas, 2)

	var list []models.DenunciaAnonima
	s.ok(s.do(http.MethodGet, "/admin/denuncias", nil, s.adminToken), http.StatusOK).DecodeData(s.T(), &list)
	s.Require().Len(list, 1)
	s.True(list[0].TieneEvidencia)

	statusPath := fmt.Sprintf("/denuncias/anonimas/%d/status", list[0].ID)
	s.fails(s.do(http.MethodPut, statusPath, gin.H{"status": "en revisión"}, token), http.StatusForbidden)
	s.fails(s.do(http.MethodPut, statusPath, gin.H{"status": "archivada"}, s.adminToken), http.StatusBadRequest)

	var updated models.DenunciaAnonima
	s.ok(s.do(http.MethodPut, statusPath, gin.H{"status": "en revisión"}, s.adminToken), http.StatusOK).DecodeData(s.T(), &updated)
	s.Equal(models.DenunciaStatusReviewing, updated.Status)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
