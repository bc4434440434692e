package api

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"agroinnova-backend/config"
	"agroinnova-backend/internal/logger"
	"agroinnova-backend/internal/middleware"
	"agroinnova-backend/internal/services"
)

// Options are the external resources the application is built from.
// Mailer, Phones and Storage override the backends picked from Config.
type Options struct {
	Config  *config.Config
	DB      *sqlx.DB
	Log     *zap.Logger
	Redis   *redis.Client
	Mailer  services.Mailer
	Phones  services.PhoneSender
	Storage services.FileStorage
}

// Dependencies holds every wired service of a running server
type Dependencies struct {
	Config *config.Config
	Log    *zap.Logger

	Auth          *services.AuthService
	Users         *services.UserService
	Verifications *services.VerificationService
	Resets        *services.PasswordResetService
	Profiles      *services.ProfileService
	Campesino     *services.CampesinoService
	Zones         *services.ZoneService
	Indicators    *services.IndicatorService
	Tags          *services.TagService
	Products      *services.ProductService
	Reviews       *services.ReviewService
	Denuncias     *services.DenunciaService
	Countries     *services.CountryService
	Hub           *services.IndicatorHub
	Uploader      *services.Uploader

	GeneralLimiter *middleware.IPRateLimiter
	AuthLimiter    *middleware.IPRateLimiter
	VerifyLimiter  middleware.Limiter

	memoryBlacklist *services.InMemoryTokenBlacklist
}

// Build wires services from opts
func Build(ctx context.Context, opts Options) (*Dependencies, error) {
	cfg := opts.Config
	log := logger.OrNop(opts.Log)

	var blacklist services.TokenBlacklist
	var memoryBlacklist *services.InMemoryTokenBlacklist
	if opts.Redis != nil {
		blacklist = services.NewRedisTokenBlacklist(opts.Redis)
	} else {
		memoryBlacklist = services.NewInMemoryTokenBlacklist()
		blacklist = memoryBlacklist
	}

	mailer := opts.Mailer
	if mailer == nil {
		var err error
		if mailer, err = services.NewMailer(ctx, cfg, log.Named("mail")); err != nil {
			return nil, fmt.Errorf("failed to configure mailer: %w", err)
		}
	}
	phones := opts.Phones
	if phones == nil {
		phones = services.NewWhatsAppService(cfg.WhatsAppAPIURL, cfg.WhatsAppToken, log.Named("whatsapp"))
	}
	storage := opts.Storage
	if storage == nil {
		var err error
		if storage, err = services.NewFileStorage(ctx, cfg, log.Named("storage")); err != nil {
			return nil, fmt.Errorf("failed to configure storage: %w", err)
		}
	}

	policy := services.PolicyFromConfig(cfg)
	emails := services.NewEmailService(mailer, log.Named("mail"))
	auth := services.NewAuthService(cfg.JWTSecret, cfg.JWTExpiration, blacklist)
	uploader := services.NewUploader(storage, cfg.MaxUploadSize)
	hub := services.NewIndicatorHub(cfg.AllowedOrigins, log.Named("hub"))
	users := services.NewUserService(opts.DB, auth, emails, policy, log.Named("users"))

	window := time.Duration(cfg.RateLimitWindow) * time.Second
	var verifyLimiter middleware.Limiter
	if opts.Redis != nil {
		verifyLimiter = middleware.NewRedisRateLimiter(opts.Redis, "verify", cfg.VerifyRateLimit, time.Minute)
	} else {
		verifyLimiter = middleware.NewIPRateLimiter(cfg.VerifyRateLimit, time.Minute)
	}

	return &Dependencies{
		Config:        cfg,
		Log:           log,
		Auth:          auth,
		Users:         users,
		Verifications: services.NewVerificationService(opts.DB, users, emails, phones, policy, log.Named("verification")),
		Resets:        services.NewPasswordResetService(opts.DB, users, emails, policy, log.Named("password_reset")),
		Profiles:      services.NewProfileService(opts.DB, uploader, log.Named("profiles")),
		Campesino:     services.NewCampesinoService(opts.DB, log.Named("campesino")),
		Zones:         services.NewZoneService(opts.DB, uploader, log.Named("zones")),
		Indicators:    services.NewIndicatorService(opts.DB, hub, log.Named("indicators")),
		Tags:          services.NewTagService(opts.DB),
		Products:      services.NewProductService(opts.DB, uploader, log.Named("products")),
		Reviews:       services.NewReviewService(opts.DB),
		Denuncias:     services.NewDenunciaService(opts.DB, uploader, log.Named("denuncias")),
		Countries:     services.NewCountryService(opts.DB),
		Hub:           hub,
		Uploader:      uploader,

		GeneralLimiter: middleware.NewIPRateLimiter(cfg.RateLimitRequests, window),
		AuthLimiter:    middleware.NewIPRateLimiter(cfg.AuthRateLimit, time.Minute),
		VerifyLimiter:  verifyLimiter,

		memoryBlacklist: memoryBlacklist,
	}, nil
}

// CleanupTasks lists the housekeeping the cleanup worker runs for this server
func (d *Dependencies) CleanupTasks() []services.CleanupTask {
	tasks := services.AccountCleanupTasks(d.Verifications, d.Users)
	if d.memoryBlacklist != nil {
		tasks = append(tasks, services.BlacklistCleanupTask(d.memoryBlacklist))
	}

	limiters := []*middleware.IPRateLimiter{d.GeneralLimiter, d.AuthLimiter}
	if l, ok := d.VerifyLimiter.(*middleware.IPRateLimiter); ok {
		limiters = append(limiters, l)
	}
	tasks = append(tasks, services.CleanupTask{
		Name: "idle_rate_limiters",
		Run: func(context.Context) (int64, error) {
			var removed int
			for _, l := range limiters {
				removed += l.Cleanup()
			}
			return int64(removed), nil
		},
	})
	return tasks
}
