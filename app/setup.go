package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/dabhanushali/enacton-training/api"
	"github.com/dabhanushali/enacton-training/config"
	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/router"
	"github.com/dabhanushali/enacton-training/services/cron"
	"github.com/dabhanushali/enacton-training/services/extraction"
	"github.com/dabhanushali/enacton-training/services/objectstore"
	"github.com/dabhanushali/enacton-training/utils"
	"github.com/dabhanushali/enacton-training/utils/auth"
	"github.com/dabhanushali/enacton-training/utils/cache"
	"github.com/gofiber/fiber/v2/log"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		log.Warnf("[CONFIG] .env not loaded: %v", err)
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}
	if getEnv.JWT_SECRET == "" {
		return errors.New("JWT_SECRET environment variable is not set")
	}

	logFile, err := utils.SetupLogger(getEnv.LOG_LEVEL, getEnv.LOG_FILE)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		log.Error("[DB] Check whether Postgres is running and the DB_* variables are set")
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Error("[DB] Failed to initialize database tables")
		return err
	}
	db := store.GetDB()

	// Redis backs login lockout and extraction previews; both degrade without it
	redisCache, err := cache.NewRedisCache(getEnv.REDIS_URL)
	if err != nil {
		log.Warnf("[CACHE] Redis unavailable: %v. Brute force protection is disabled and previews stay in memory.", err)
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	objects, err := objectstore.New(objectstore.Config{
		AccessKey: getEnv.STORAGE_ACCESS_KEY,
		SecretKey: getEnv.STORAGE_SECRET_KEY,
		Bucket:    getEnv.STORAGE_BUCKET,
		Region:    getEnv.STORAGE_REGION,
		Endpoint:  getEnv.STORAGE_ENDPOINT,
		CDNURL:    getEnv.STORAGE_CDN_URL,
	})
	if err != nil {
		log.Warnf("[STORAGE] %v; file uploads are disabled", err)
		objects = nil
	}

	svc := router.NewServices(db, redisCache, extraction.Config{
		FunctionURL:     getEnv.EXTRACTION_FUNCTION_URL,
		FunctionKey:     getEnv.EXTRACTION_FUNCTION_KEY,
		InferenceAPIKey: getEnv.INFERENCE_API_KEY,
		InferenceURL:    getEnv.INFERENCE_BASE_URL,
		InferenceModel:  getEnv.INFERENCE_MODEL,
		Timeout:         time.Duration(getEnv.EXTRACTION_TIMEOUT_SECONDS) * time.Second,
	})
	if !svc.Extraction.Enabled() {
		log.Warn("[EXTRACTION] no extraction function or inference key configured; extraction is disabled")
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	if getEnv.CRON_ENABLED {
		cronManager := cron.NewCronManager(db, cron.Dependencies{
			Blacklist:     auth.NewBlacklistService(db),
			Projects:      svc.Projects,
			Notifications: svc.Notifications,
			Previews:      svc.Extraction.Previews(),
		})
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warnf("[CRON] Failed to start cron jobs: %v", err)
		} else {
			defer cronManager.Stop()
		}
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        getEnv.JWT_ISSUER,
	})

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes
	router.SetupRoutes(app, router.Dependencies{
		Store:          store,
		Redis:          redisCache,
		Objects:        objects,
		JWT:            jwtManager,
		Services:       svc,
		AllowedOrigins: getEnv.ALLOWED_ORIGINS,
	})

	// Get the PORT & Start the Server
	return server.Run()
}
