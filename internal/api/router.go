package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tourbook/internal/api/controllers"
	"tourbook/internal/models/db_models"
	"tourbook/pkg/middleware"
	"tourbook/pkg/utils"
)

func NewRouter(
	log *zap.Logger,
	tokens *utils.TokenIssuer,
	authController *controllers.AuthController,
	healthController *controllers.HealthController) *gin.Engine {

	r := gin.New()
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(log))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, tokens, authController, healthController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	tokens *utils.TokenIssuer,
	authController *controllers.AuthController,
	healthController *controllers.HealthController) {

	r.GET("/healthz", healthController.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := r.Group("/auth")
	authGroup.POST("/register", authController.Register)
	authGroup.GET("/verify", authController.VerifyEmail)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/refresh", authController.Refresh)
	authGroup.POST("/forgot-password", authController.ForgotPassword)
	authGroup.POST("/reset-password", authController.ResetPassword)

	authed := authGroup.Group("", middleware.JWTAuthMiddleware(tokens))
	authed.GET("/me", authController.Me)
	authed.GET("/me/provider", middleware.RoleMiddleware(db_models.RoleProvider), authController.ProviderProfile)
}
