package server

import (
	"context"
	"log"
	"net/http"

	"fintrack-service/internal/config"
	"fintrack-service/internal/handler"
	"fintrack-service/internal/repository"
	"fintrack-service/internal/router"
	"fintrack-service/internal/service"
	"fintrack-service/pkg/jwtutil"
	"fintrack-service/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	HTTP   *http.Server
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Logger *zap.Logger
}

func NewServer(cfg config.Config) *Server {
	// --- Postgres ---
	dbpool, err := pgxpool.New(context.Background(), cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})

	logger, _ := zap.NewProduction()

	// --- JWT: signing + verification keys loaded once at startup ---
	jwtCfg := jwtutil.JWTConfig{
		PubPath:  cfg.JWTPublicKeyPath,
		PrivPath: cfg.JWTPrivateKeyPath,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	}
	verifier := jwtutil.LoadAndBuild(jwtCfg)
	generator := jwtutil.LoadAndBuildGenerator(jwtCfg, cfg.JWTKeyID, cfg.JWTTTL)

	// --- Repos & services ---
	userRepo := repository.NewUserRepo(dbpool)
	trxRepo := repository.NewTransactionRepo(dbpool)
	drRepo := repository.NewDeletionRequestRepo(dbpool)

	authSvc := service.NewAuthService(userRepo, generator)
	trxSvc := service.NewTransactionService(trxRepo)
	drSvc := service.NewDeletionRequestService(drRepo, trxRepo)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authSvc, logger)
	trxHandler := handler.NewTransactionHandler(trxSvc, logger)
	drHandler := handler.NewDeletionRequestHandler(drSvc, rdb, logger)

	// --- Middleware & routes ---
	auth := middleware.NewAuthMiddleware(verifier)

	r := chi.NewRouter()
	router.SetupRoutes(r, authHandler, trxHandler, drHandler, auth, rdb)

	return &Server{
		HTTP: &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: r,
		},
		DB:     dbpool,
		Redis:  rdb,
		Logger: logger,
	}
}

func (s *Server) Close() {
	s.DB.Close()
	_ = s.Redis.Close()
	_ = s.Logger.Sync()
}
