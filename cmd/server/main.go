package main

import (
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agrolens/claimverify/internal/claims"
	"github.com/agrolens/claimverify/internal/exif"
	"github.com/agrolens/claimverify/internal/vision"
	"github.com/agrolens/claimverify/internal/weather"
	"github.com/agrolens/claimverify/pkg/common"
	"github.com/agrolens/claimverify/pkg/config"
	"github.com/agrolens/claimverify/pkg/logger"
	"github.com/agrolens/claimverify/pkg/middleware"
)

const serviceName = "claimverify"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	service := claims.NewService(cfg,
		exif.NewFileExtractor(),
		vision.NewHeuristicAnalyzer(),
		weather.NewService(cfg.Weather),
	)
	handler := claims.NewHandler(service)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(serviceName))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	if cfg.Server.CORSOrigins == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", common.HealthCheck(serviceName, "1.0.0"))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	logger.Info("starting claim verification server",
		zap.String("port", cfg.Server.Port),
		zap.String("environment", cfg.Server.Environment),
	)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
