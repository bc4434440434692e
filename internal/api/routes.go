package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agroinnova-backend/internal/logger"
	"agroinnova-backend/internal/middleware"
	"agroinnova-backend/internal/models"
	"agroinnova-backend/internal/services"
)

var (
	roleAdmin      = string(models.UserRoleAdmin)
	roleSupervisor = string(models.UserRoleSupervisor)
	roleUser       = string(models.UserRoleUser)
	roleCampesino  = string(models.UserRoleCampesino)
)

// NewRouter builds the gin engine with every route under /api/v1
func NewRouter(d *Dependencies) *gin.Engine {
	if d.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	cfg := d.Config

	router := gin.New()
	router.Use(logger.RequestID())
	router.Use(logger.GinMiddleware(d.Log))
	router.Use(logger.Recovery(d.Log))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RateLimitMiddleware(d.GeneralLimiter, "Demasiadas solicitudes, intenta más tarde", cfg.DisableRateLimiting, d.Log))
	router.Use(middleware.FileUploadSecurityMiddleware(uploadBodyLimit(cfg.MaxUploadSize)))

	if local, ok := d.Uploader.Storage().(*services.LocalStorage); ok {
		router.Static("/uploads", local.Root())
	}

	authMW := middleware.NewAuthMiddleware(d.Auth)
	requireAuth := authMW.AuthRequired()
	admin := authMW.RequireRoles(roleAdmin)

	authHandlers := NewAuthHandlers(d.Users, d.Auth, d.Verifications, d.Resets, d.Countries)
	profileHandlers := NewProfileHandlers(d.Profiles, d.Uploader)
	adminHandlers := NewAdminHandlers(d.Users, d.Profiles, d.Campesino, d.Denuncias, d.Uploader)
	campesinoHandlers := NewCampesinoHandlers(d.Campesino)
	campiamigo := NewCampiamigoHandlers(d.Zones, d.Indicators, d.Tags, d.Products, d.Reviews, d.Hub, d.Uploader)
	denunciaHandlers := NewDenunciaHandlers(d.Denuncias)

	v1 := router.Group("/api/v1")

	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"status":  "ok",
			"time":    time.Now().UTC(),
			"clients": d.Hub.ClientCount(),
		})
	})

	authRoutes := v1.Group("/auth/user")
	authRoutes.Use(middleware.RateLimitMiddleware(d.AuthLimiter,
		"Demasiados intentos de autenticación, intenta más tarde", cfg.DisableRateLimiting, d.Log))
	{
		verifyLimit := middleware.RateLimitMiddleware(d.VerifyLimiter,
			"Demasiados intentos de verificación, intenta más tarde", cfg.DisableRateLimiting, d.Log)

		authRoutes.POST("/register", authHandlers.Register)
		authRoutes.PUT("/verify/email", verifyLimit, authHandlers.VerifyEmail)
		authRoutes.POST("/verify/email/resend", verifyLimit, authHandlers.ResendEmailCode)
		authRoutes.POST("/phone/send", verifyLimit, authHandlers.SendPhoneCode)
		authRoutes.PUT("/phone/verify", verifyLimit, authHandlers.VerifyPhone)
		authRoutes.POST("/phone/verify/resend", verifyLimit, authHandlers.ResendPhoneCode)
		authRoutes.POST("/login", authHandlers.Login)
		authRoutes.POST("/login/forgotPassword", authHandlers.ForgotPassword)
		authRoutes.POST("/login/resetPassword", requireAuth, authHandlers.ResetPassword)
		authRoutes.POST("/logout", requireAuth, authHandlers.Logout)
		authRoutes.POST("/refresh", requireAuth, authHandlers.RefreshToken)
		authRoutes.PUT("/updateStatus", requireAuth, admin, authHandlers.UpdateStatus)
		authRoutes.GET("/countries", authHandlers.Countries)
	}

	userRoutes := v1.Group("/user", requireAuth)
	{
		userRoutes.GET("/me", profileHandlers.Me)
		userRoutes.PUT("/update-profile",
			authMW.RequireRoles(roleUser, roleSupervisor, roleAdmin, roleCampesino), profileHandlers.UpdateProfile)
		userRoutes.PUT("/update-minimal-profile", authMW.RequireRoles(roleUser), profileHandlers.UpdateMinimalProfile)
	}

	adminRoutes := v1.Group("/admin", requireAuth, admin)
	{
		adminRoutes.GET("/usersProfile", adminHandlers.ListUsers)
		adminRoutes.GET("/accounts", adminHandlers.ListUsers)
		adminRoutes.PUT("/user/:id", adminHandlers.UpdateUser)
		adminRoutes.PUT("/account/:id", adminHandlers.UpdateUser)
		adminRoutes.GET("/profile/:id", adminHandlers.GetProfile)
		adminRoutes.PUT("/profile/:id", adminHandlers.UpdateProfile)
		adminRoutes.GET("/sociodemographic/:id", adminHandlers.GetSocioDemographic)
		adminRoutes.PUT("/sociodemographic/:id", adminHandlers.UpsertSocioDemographic)
		adminRoutes.GET("/denuncias", adminHandlers.ListDenuncias)
	}

	campesinoRoutes := v1.Group("/campesino/register-campesino/:userId", requireAuth, admin)
	{
		campesinoRoutes.POST("", campesinoHandlers.PersonalData())
		campesinoRoutes.GET("", campesinoHandlers.Record)
		campesinoRoutes.POST("/socio-demographic", campesinoHandlers.SocioDemographic())
		campesinoRoutes.POST("/family-composition", campesinoHandlers.FamilyComposition())
		campesinoRoutes.POST("/farm-profile", campesinoHandlers.FarmProfile())
		campesinoRoutes.POST("/infrastructure", campesinoHandlers.Infrastructure())
		campesinoRoutes.POST("/productive-info", campesinoHandlers.ProductiveInfo())
		campesinoRoutes.POST("/main-products", campesinoHandlers.MainProducts())
		campesinoRoutes.POST("/technology-practice", campesinoHandlers.TechnologyPractice())
	}

	campiamigoRoutes := v1.Group("/campiamigo")
	{
		campiamigoRoutes.POST("/zone", requireAuth, admin, campiamigo.CreateZone)
		campiamigoRoutes.GET("/zones", campiamigo.ListZones)
		campiamigoRoutes.GET("/zone/:id", campiamigo.GetZone)
		campiamigoRoutes.PUT("/zone/:id", requireAuth, admin, campiamigo.AssignZone)

		campiamigoRoutes.GET("/indicator/:userId", requireAuth, campiamigo.GetIndicator)
		campiamigoRoutes.PUT("/indicator/:userId/color", requireAuth,
			authMW.RequireRoles(roleAdmin, roleSupervisor), campiamigo.UpdateIndicatorColor)
		campiamigoRoutes.PUT("/indicator/:userId/position", requireAuth, admin, campiamigo.UpdateIndicatorPosition)
		campiamigoRoutes.GET("/ws/indicators", requireAuth, campiamigo.IndicatorSocket)

		campiamigoRoutes.POST("/tag/:id", requireAuth, admin, campiamigo.CreateTag)
		campiamigoRoutes.GET("/tag/:id/count", requireAuth, admin, campiamigo.CountTags)

		campiamigoRoutes.POST("/product/:id", requireAuth, admin, campiamigo.CreateProduct)
		campiamigoRoutes.GET("/product/:id/count", campiamigo.CountProducts)
		campiamigoRoutes.GET("/products/all", campiamigo.ListProducts)
		campiamigoRoutes.GET("/product/:id", campiamigo.GetProduct)
		campiamigoRoutes.POST("/product/:id/reviews", requireAuth, campiamigo.CreateReview)
		campiamigoRoutes.GET("/product/:id/reviews", campiamigo.ListReviews)
	}

	denunciaRoutes := v1.Group("/denuncias")
	{
		denunciaRoutes.POST("/agregar_tipos", requireAuth, admin, denunciaHandlers.CreateTipo)
		denunciaRoutes.POST("/agregar_subtipo", requireAuth, admin, denunciaHandlers.CreateSubtipo)
		denunciaRoutes.GET("/tipos", denunciaHandlers.ListTipos)
		denunciaRoutes.GET("/subtipos", denunciaHandlers.ListSubtipos)
		denunciaRoutes.POST("/anonimas", requireAuth, denunciaHandlers.CreateAnonima)
		denunciaRoutes.GET("/anonimas/consulta", denunciaHandlers.Consulta)
		denunciaRoutes.PUT("/anonimas/:id/status", requireAuth,
			authMW.RequireRoles(roleAdmin, roleSupervisor), denunciaHandlers.UpdateStatus)
	}

	return router
}

// uploadBodyLimit allows a product form with its maximum number of files
func uploadBodyLimit(perFile int64) int64 {
	files := int64(models.MaxProductImages + models.MaxProductVideos + models.MaxProductModels)
	return perFile * files
}
