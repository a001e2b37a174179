package main

import (
	"context"
	"net/http"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/videoauth/auth-service/handlers"
	"github.com/videoauth/auth-service/internal/auth"
	"github.com/videoauth/auth-service/internal/bootstrap"
	"github.com/videoauth/auth-service/internal/config"
	"github.com/videoauth/auth-service/internal/database"
	"github.com/videoauth/auth-service/internal/idp"
	"github.com/videoauth/auth-service/internal/keycache"
	"github.com/videoauth/auth-service/internal/tokens"
	"github.com/videoauth/auth-service/internal/users"
	"github.com/videoauth/auth-service/pkg/logger"
	"github.com/videoauth/auth-service/pkg/metrics"
	"github.com/videoauth/auth-service/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: pool=%s region=%s db=%s", cfg.Cognito.UserPoolID, cfg.Cognito.Region, cfg.Database.Path)

	ctx := context.Background()

	// the directory store must be reachable and migrated before the server
	// accepts a single request
	db, err := database.Open(cfg.Database.Path, cfg.Database.MaxOpenConns)
	if err != nil {
		logger.Fatalf("failed to open directory store: %v", err)
	}
	defer db.Close()

	sup := &bootstrap.Supervisor{
		MaxAttempts: cfg.Bootstrap.MaxAttempts,
		Interval:    cfg.Bootstrap.Interval,
		Probe:       func(ctx context.Context) error { return database.Ping(ctx, db) },
		Sync:        func(ctx context.Context) error { return database.Sync(ctx, db) },
	}
	if err := sup.AwaitReady(ctx); err != nil {
		logger.Fatalf("%v", err)
	}

	// identity provider client
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Cognito.Region))
	if err != nil {
		logger.Fatalf("failed to load AWS config: %v", err)
	}
	provider := idp.NewCognito(cip.NewFromConfig(awsCfg), cfg.Cognito.UserPoolID, cfg.Cognito.ClientID)

	// bearer-token verifier backed by the provider's signing keys
	issuer := cfg.Cognito.Issuer()
	keys := keycache.New(keycache.DiscoverJWKSURL(ctx, issuer))
	verifier := tokens.NewVerifier(keys, issuer, cfg.Cognito.ClientID)
	authn := middleware.AuthMiddleware(verifier)

	repo := users.NewSQLRepository(db)
	svc := auth.NewService(provider, repo)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	r.Use(middleware.MetricsMiddleware())

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		var rdb *redis.Client
		if cfg.RateLimit.UseRedis && cfg.Redis.Host != "" {
			rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warnf("failed to connect to Redis (%s:%s), falling back to in-memory limiter: %v", cfg.Redis.Host, cfg.Redis.Port, err)
				rdb = nil
			}
		}
		if rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
			logger.Infof("rate limiter enabled (redis, %s:%s)", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
			logger.Infof("rate limiter enabled (in-memory)")
		}
	}

	// liveness: the process is up, regardless of dependency state
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// readiness: bootstrap already gated startup, so report store health live
	r.GET("/ready", func(c *gin.Context) {
		if err := database.Ping(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "uptime": time.Since(startTime).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "uptime": time.Since(startTime).String()})
	})

	handlers.NewAuthHandler(svc).Register(r.Group("/"), authn)
	handlers.NewUsersHandler(repo).Register(r.Group("/"), authn)
	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	logger.Infof("listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}
