// Package testutil holds shared fixtures for package tests: a migrated
// in-memory database, configuration, multipart bodies and response envelopes.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroinnova-backend/config"
	"agroinnova-backend/database"
)

// PNG is the smallest payload sniffed as image/png
var PNG = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

// MP4 is sniffed as video/mp4
var MP4 = append([]byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0x00, 0x00, 0x00, 0x00, 'm', 'p', '4', '2', 'i', 's', 'o', 'm'}, make([]byte, 64)...)

// NewTestConfig returns a configuration suitable for tests
func NewTestConfig() *config.Config {
	cfg := &config.Config{
		Environment:            "test",
		Port:                   "0",
		BaseURL:                "http://localhost:2020",
		FrontendURL:            "http://localhost:4200",
		JWTSecret:              "test-jwt-secret-key-12345678901234567890",
		JWTExpiration:          3600,
		RateLimitRequests:      1000,
		RateLimitWindow:        60,
		AuthRateLimit:          1000,
		VerifyRateLimit:        1000,
		DisableRateLimiting:    true,
		LoginMaxAttempts:       3,
		LoginLockMinutes:       3,
		VerificationCodeTTL:    10,
		RandomPasswordTTL:      5,
		MaxVerificationAttempt: 3,
		MailProvider:           "log",
		MailFrom:               "no-reply@agroinnova.test",
		StorageDriver:          "local",
		MaxUploadSize:          5 * 1024 * 1024,
		LogLevel:               "error",
	}
	return cfg
}

// NewTestDB opens a private in-memory database with the schema and seed data applied
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.Initialize(dsn, nil)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	_, err = database.Seed(db)
	require.NoError(t, err)
	return db
}

// FormFile is one file part of a multipart body
type FormFile struct {
	Field   string
	Name    string
	Content []byte
}

// MultipartBody encodes fields and files, returning the body and its content type
func MultipartBody(t *testing.T, fields map[string]string, files ...FormFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		require.NoError(t, err)
		_, err = part.Write(f.Content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

// FileHeader builds a *multipart.FileHeader the way a parsed request would carry it
func FileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body, contentType := MultipartBody(t, nil, FormFile{Field: "file", Name: name, Content: content})
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	require.NoError(t, req.ParseMultipartForm(32<<20))
	t.Cleanup(func() { req.MultipartForm.RemoveAll() })
	return req.MultipartForm.File["file"][0]
}

// CountFiles returns how many regular files exist below root
func CountFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

// MakeRequest sends body as JSON unless it is already a reader
func MakeRequest(router http.Handler, method, url string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody io.Reader
	isJSON := false
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reqBody = b
	default:
		raw, _ := json.Marshal(b)
		reqBody = bytes.NewReader(raw)
		isJSON = true
	}

	req := httptest.NewRequest(method, url, reqBody)
	if isJSON {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Bearer returns the Authorization header for token
func Bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// Envelope is the JSON shape every API response shares
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
}

// DecodeData unmarshals the data member into dst
func (e Envelope) DecodeData(t *testing.T, dst interface{}) {
	t.Helper()
	require.NotEmpty(t, e.Data, "response has no data")
	require.NoError(t, json.Unmarshal(e.Data, dst))
}

// AssertSuccessResponse checks status and success flag and returns the envelope
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int) Envelope {
	t.Helper()
	require.Equal(t, expectedStatus, w.Code, w.Body.String())
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	return env
}

// AssertErrorResponse checks status and a false success flag and returns the envelope
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int) Envelope {
	t.Helper()
	require.Equal(t, expectedStatus, w.Code, w.Body.String())
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	return env
}

// RecordingPhoneSender keeps the latest verification code sent to each phone
type RecordingPhoneSender struct {
	mu    sync.Mutex
	codes map[string]string
}

// NewRecordingPhoneSender creates an empty recorder
func NewRecordingPhoneSender() *RecordingPhoneSender {
	return &RecordingPhoneSender{codes: make(map[string]string)}
}

// SendVerificationCode stores code for phone
func (r *RecordingPhoneSender) SendVerificationCode(_ context.Context, phone, code, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[phone] = code
	return nil
}

// LastCode returns the latest code sent to phone
func (r *RecordingPhoneSender) LastCode(phone string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.codes[phone]
}
