package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cogniscreen/cogniscreen/internal/database"
	"github.com/cogniscreen/cogniscreen/internal/server"
	"github.com/cogniscreen/cogniscreen/pkg/analysis"
	"github.com/cogniscreen/cogniscreen/pkg/config"
	"github.com/cogniscreen/cogniscreen/pkg/logger"
	"github.com/cogniscreen/cogniscreen/pkg/tracing"
)

func main() {
	var (
		configFile     = flag.String("config", "", "Path to configuration file")
		generateConfig = flag.String("generate-config", "", "Generate example configuration file at specified path")
		validateConfig = flag.Bool("validate-config", false, "Validate configuration and exit")
		host           = flag.String("host", "", "Server host")
		port           = flag.Int("port", 0, "Server port")
		modelsDir      = flag.String("models-dir", "", "Directory containing model artifacts")
		jwtSecret      = flag.String("jwt-secret", "", "JWT secret for authentication")
		logLevel       = flag.String("log-level", "", "Log level")
		version        = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Printf("CogniScreen Server v%s\n", server.Version)
		os.Exit(0)
	}

	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	if *generateConfig != "" {
		if err := server.GetDefaultConfig().WriteExample(*generateConfig); err != nil {
			log.Fatalf("Failed to generate config file: %v", err)
		}
		fmt.Printf("Example configuration file generated at: %s\n", *generateConfig)
		os.Exit(0)
	}

	if err := config.ValidateConfigPath(*configFile); err != nil {
		log.Fatalf("Invalid config file: %v", err)
	}

	serverConfig := server.GetDefaultConfig()
	if err := serverConfig.Load(*configFile); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Command line flags take highest priority.
	if *host != "" {
		serverConfig.Host = *host
	}
	if *port != 0 {
		serverConfig.Port = *port
	}
	if *modelsDir != "" {
		serverConfig.Models.ModelsDir = *modelsDir
	}
	if *jwtSecret != "" {
		serverConfig.JWT.Secret = *jwtSecret
	}
	if *logLevel != "" {
		serverConfig.LogLevel = *logLevel
	}

	if *validateConfig {
		if err := serverConfig.Validate(); err != nil {
			fmt.Printf("Configuration validation failed:\n%v\n", err)
			os.Exit(1)
		}
		fmt.Println("Configuration validation passed successfully.")
		os.Exit(0)
	}

	logFormat := logger.JSONFormat
	if serverConfig.LogFormat == "text" {
		logFormat = logger.TextFormat
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:   logger.ParseLogLevel(serverConfig.LogLevel),
		Format:  logFormat,
		Output:  os.Stdout,
		Service: "cogniscreen",
		Version: server.Version,
	})
	logger.SetDefault(appLogger)

	if serverConfig.JWT.Secret == "" {
		appLogger.Fatal("JWT secret is required. Set JWT_SECRET or use --jwt-secret.")
	}

	shutdownTracing, err := tracing.Setup(context.Background(), serverConfig.Tracing)
	if err != nil {
		appLogger.Fatal("Failed to initialize tracing: %v", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			appLogger.WithError(err).Warn("Failed to flush traces on shutdown")
		}
	}()

	// The model bundle is a readiness barrier: without the artifacts no
	// request can be served, so a load failure aborts startup.
	appLogger.WithField("models_dir", serverConfig.Models.ModelsDir).Info("Loading model artifacts")
	bundle, err := analysis.LoadBundle(serverConfig.Models)
	if err != nil {
		appLogger.Fatal("Failed to load model artifacts: %v", err)
	}
	analyzer := analysis.NewService(bundle, serverConfig.Analysis, appLogger)

	info := analyzer.ModelInfo()
	appLogger.WithFields(map[string]interface{}{
		"annotator":         info.AnnotatorName,
		"vectorizer":        info.VectorizerVersion,
		"feature_dimension": info.FeatureDimension,
	}).Info("Model artifacts loaded")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	appLogger.WithFields(map[string]interface{}{
		"host":     serverConfig.Database.Host,
		"port":     serverConfig.Database.Port,
		"database": serverConfig.Database.Database,
	}).Info("Connecting to database")

	if err := database.WaitForDatabase(ctx, serverConfig.Database, 10, 2*time.Second); err != nil {
		appLogger.Fatal("Database not reachable: %v", err)
	}

	db, err := database.NewConnection(serverConfig.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if !serverConfig.Database.AutoMigrate {
		// Schema must already exist; verify instead of failing on the
		// first query.
		if err := db.HealthCheck(ctx); err != nil {
			appLogger.Fatal("Database schema check failed (set DB_AUTO_MIGRATE=true to migrate automatically): %v", err)
		}
	}

	srv, err := server.New(serverConfig, db, analyzer, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize server: %v", err)
	}

	appLogger.WithFields(map[string]interface{}{
		"address":       serverConfig.GetAddress(),
		"api_prefix":    serverConfig.APIPrefix,
		"tls_enabled":   serverConfig.TLSEnabled,
		"rate_limiting": serverConfig.RateLimitEnabled,
		"cors_enabled":  serverConfig.CORSEnabled,
	}).Info("Starting CogniScreen server")

	if err := srv.Start(context.Background()); err != nil {
		appLogger.Fatal("Server failed: %v", err)
	}
}
