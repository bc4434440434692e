package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"agroinnova-backend/config"
	"agroinnova-backend/internal/utils"
)

// FileStorage persists uploaded files under slash-separated keys
type FileStorage interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// NewFileStorage picks the backend named by STORAGE_DRIVER
func NewFileStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (FileStorage, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3Storage(ctx, S3Options{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
			PublicURL:    cfg.S3PublicURL,
		}, log)
	case "", "local":
		return NewLocalStorage(cfg.UploadPath, cfg.BaseURL+"/uploads"), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func cleanKey(key string) (string, error) {
	key = path.Clean(strings.TrimLeft(key, "/"))
	if key == "." || key == ".." || strings.HasPrefix(key, "../") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return key, nil
}

// LocalStorage writes files below a directory served at baseURL
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage creates a disk-backed storage
func NewLocalStorage(root, baseURL string) *LocalStorage {
	return &LocalStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Root is the directory files are written to
func (s *LocalStorage) Root() string {
	return s.root
}

// Save writes r to root/key
func (s *LocalStorage) Save(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return key, nil
}

// Delete removes root/key; a missing file is not an error
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// URL returns the public address of key
func (s *LocalStorage) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

// S3Options configures an S3-compatible bucket
type S3Options struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	PublicURL    string
}

// S3Storage stores files in an S3-compatible bucket (AWS, MinIO, R2)
type S3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
	log       *zap.Logger
}

// NewS3Storage builds an S3 client with static credentials
func NewS3Storage(ctx context.Context, opts S3Options, log *zap.Logger) (*S3Storage, error) {
	if opts.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	publicURL := strings.TrimRight(opts.PublicURL, "/")
	if publicURL == "" {
		if opts.Endpoint != "" {
			publicURL = strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, region)
		}
	}

	return &S3Storage{client: client, bucket: opts.Bucket, publicURL: publicURL, log: log}, nil
}

// Save uploads r with PutObject
func (s *S3Storage) Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	s.log.Debug("object uploaded", zap.String("bucket", s.bucket), zap.String("key", key))
	return key, nil
}

// Delete removes the object
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// URL returns the public address of key
func (s *S3Storage) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.publicURL + "/" + strings.TrimLeft(key, "/")
}

// FileKind selects the allow-list an upload is checked against
type FileKind string

const (
	KindImage FileKind = "image"
	KindVideo FileKind = "video"
	KindAudio FileKind = "audio"
	KindModel FileKind = "model"
)

type fileRule struct {
	extensions []string
	mimes      []string // prefixes of the sniffed content type
}

var fileRules = map[FileKind]fileRule{
	KindImage: {
		extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
		mimes:      []string{"image/"},
	},
	KindVideo: {
		extensions: []string{".mp4", ".webm", ".mov", ".avi"},
		mimes:      []string{"video/", "application/octet-stream"},
	},
	KindAudio: {
		extensions: []string{".mp3", ".wav", ".ogg", ".m4a", ".webm"},
		mimes:      []string{"audio/", "application/ogg", "video/webm", "video/mp4"},
	},
	KindModel: {
		extensions: []string{".glb", ".gltf"},
		mimes:      []string{"application/octet-stream", "text/plain", "application/json"},
	},
}

// EvidenceKind classifies complaint evidence by extension
func EvidenceKind(filename string) FileKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".webm", ".mp4", ".mov", ".avi":
		return KindVideo
	default:
		return KindImage
	}
}

// Uploader validates multipart files and writes them to a FileStorage
type Uploader struct {
	storage FileStorage
	maxSize int64
	now     func() time.Time
	newID   func() string
}

// NewUploader creates an uploader with a per-file size cap
func NewUploader(storage FileStorage, maxSize int64) *Uploader {
	return &Uploader{storage: storage, maxSize: maxSize, now: time.Now, newID: shortID}
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Storage returns the underlying file storage
func (u *Uploader) Storage() FileStorage {
	return u.storage
}

// URL resolves a stored key
func (u *Uploader) URL(key string) string {
	return u.storage.URL(key)
}

// Store checks fh against kind and saves it under dir/<name>-<unixms>-<id><ext>
func (u *Uploader) Store(ctx context.Context, fh *multipart.FileHeader, kind FileKind, dir string) (string, error) {
	if fh == nil {
		return "", ErrInvalidFile
	}
	if u.maxSize > 0 && fh.Size > u.maxSize {
		return "", ErrFileTooLarge
	}
	rule, ok := fileRules[kind]
	if !ok {
		return "", ErrInvalidFile
	}
	if !utils.Contains(rule.extensions, strings.ToLower(filepath.Ext(fh.Filename))) {
		return "", fmt.Errorf("%w: extensión %s", ErrInvalidFile, filepath.Ext(fh.Filename))
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	if !matchesMIME(rule.mimes, contentType) {
		return "", fmt.Errorf("%w: tipo %s", ErrInvalidFile, contentType)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind upload: %w", err)
	}

	key := dir + "/" + utils.StoredFileName(fh.Filename, u.now(), u.newID())
	return u.storage.Save(ctx, key, f, contentType)
}

// Batch returns an UploadBatch that remembers every key it stores
func (u *Uploader) Batch(log *zap.Logger) *UploadBatch {
	if log == nil {
		log = zap.NewNop()
	}
	return &UploadBatch{uploader: u, log: log}
}

// UploadBatch groups the files written for one request so a failed request can remove them.
// It is safe for concurrent use.
type UploadBatch struct {
	uploader *Uploader
	log      *zap.Logger

	mu   sync.Mutex
	keys []string
}

// Store is Uploader.Store, recording the key on success
func (b *UploadBatch) Store(ctx context.Context, fh *multipart.FileHeader, kind FileKind, dir string) (string, error) {
	key, err := b.uploader.Store(ctx, fh, kind, dir)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	b.keys = append(b.keys, key)
	b.mu.Unlock()
	return key, nil
}

// Discard deletes every stored key except those in keep
func (b *UploadBatch) Discard(ctx context.Context, keep ...string) {
	ctx = context.WithoutCancel(ctx)
	b.mu.Lock()
	keys := b.keys
	b.keys = nil
	b.mu.Unlock()

	for _, key := range keys {
		if key == "" || utils.Contains(keep, key) {
			continue
		}
		if err := b.uploader.storage.Delete(ctx, key); err != nil {
			b.log.Warn("failed to remove stored file", zap.String("key", key), zap.Error(err))
		}
	}
}

func matchesMIME(prefixes []string, contentType string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(contentType, p) {
			return true
		}
	}
	return false
}
