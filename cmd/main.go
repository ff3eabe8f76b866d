package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"

	grpcctx "github.com/dtroode/contractchecker-server/internal/api/grpc/context"
	grpcrouter "github.com/dtroode/contractchecker-server/internal/api/grpc/router"
	grpcserver "github.com/dtroode/contractchecker-server/internal/api/grpc/server"
	httphandler "github.com/dtroode/contractchecker-server/internal/api/http/handler"
	httprouter "github.com/dtroode/contractchecker-server/internal/api/http/router"
	httpserver "github.com/dtroode/contractchecker-server/internal/api/http/server"
	"github.com/dtroode/contractchecker-server/internal/config"
	"github.com/dtroode/contractchecker-server/internal/limiter"
	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/mail"
	"github.com/dtroode/contractchecker-server/internal/model"
	"github.com/dtroode/contractchecker-server/internal/repository/postgres"
	"github.com/dtroode/contractchecker-server/internal/server"
	"github.com/dtroode/contractchecker-server/internal/service"
	storage "github.com/dtroode/contractchecker-server/internal/storage/minio"
	"github.com/dtroode/contractchecker-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN, postgres.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	waitlistRepo := postgres.NewWaitlistRepository(db)
	deviceRepo := postgres.NewDeviceRepository(db)
	challengeRepo := postgres.NewChallengeRepository(db)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
		Region: cfg.Storage.Region,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, storage.Options{
		Bucket:       cfg.Storage.Bucket,
		CreateBucket: cfg.Storage.CreateBucket,
	})
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	verifier, err := token.NewIDTokenVerifier(ctx, token.IDTokenVerifierConfig{
		Issuer:   cfg.Identity.Issuer,
		Audience: cfg.Identity.Audience,
		JWKSURL:  cfg.Identity.JWKSURL,
	})
	if err != nil {
		logger.Fatal("failed to initialize identity verifier", "error", err)
	}
	sessionTokens := token.NewSessionJWT(cfg.Session.Secret, cfg.Session.TTL)

	mailer := newMailer(cfg, logger)

	attemptLimiter, redisClient := newAttemptLimiter(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	waitlistService := service.NewWaitlist(waitlistRepo, logger)
	deviceService := service.NewDevice(deviceRepo, challengeRepo, mailer, cfg.Mail.OTPFrom, logger,
		service.WithLimiter(attemptLimiter),
		service.WithOTPTTL(cfg.OTP.TTL),
	)
	uploadService := service.NewUpload(storageClient, cfg.Storage.UploadURLTTL, logger)
	sessionService := service.NewSession(verifier, sessionTokens, logger)
	notifier := service.NewWelcomeNotifier(waitlistRepo, mailer, cfg.Mail.WelcomeFrom, logger)

	grpcServer := grpcserver.NewGRPCServer(
		grpcrouter.New(waitlistService, deviceService, uploadService, verifier, grpcctx.NewManager(), logger).Register(),
		fmt.Sprintf(":%s", cfg.GRPC.Port),
	)
	httpServer := httpserver.NewHTTPServer(
		httprouter.New(sessionService, db, httphandler.CookieOptions{
			Name:   cfg.Session.CookieName,
			MaxAge: cfg.Session.TTL,
			Secure: cfg.IsProduction(),
		}, logger).Register(),
		fmt.Sprintf(":%s", cfg.HTTP.Port),
		cfg.HTTP.ReadHeaderTimeout,
	)

	var wg sync.WaitGroup
	startServer(&wg, logger, grpcServer,
		server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName))
	startServer(&wg, logger, httpServer,
		server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName))

	listener := postgres.NewWaitlistListener(db, logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := listener.Listen(ctx, notifier.HandleCreated); err != nil {
			logger.Error("waitlist listener stopped", "error", err)
		}
	}()

	var sweeper *service.ChallengeSweeper
	if cfg.Sweep.Enabled {
		sweeper = service.NewChallengeSweeper(challengeRepo, logger, service.WithSchedule(cfg.Sweep.Schedule))
		if err := sweeper.Start(); err != nil {
			logger.Fatal("failed to start challenge sweeper", "error", err)
		}
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if sweeper != nil {
		<-sweeper.Stop().Done()
	}

	var shutdownErr error
	for _, s := range []model.Server{grpcServer, httpServer} {
		if err := s.Stop(shutdownCtx); err != nil {
			shutdownErr = multierr.Append(shutdownErr, fmt.Errorf("%s: %w", s.Address(), err))
		}
	}
	if shutdownErr != nil {
		logger.Error("error during server shutdown", "error", shutdownErr)
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func startServer(wg *sync.WaitGroup, logger *logger.Logger, s model.Server, sl model.SecurityLayer) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err, "address", s.Address())
		}
	}()
}

// newMailer falls back to logging messages when SMTP delivery is off.
func newMailer(cfg *config.Config, logger *logger.Logger) model.Mailer {
	if !cfg.Mail.Enabled {
		logger.Warn("SMTP delivery disabled, emails are only logged")
		return mail.NewLogMailer(logger)
	}

	mailer, err := mail.NewSMTPMailer(mail.SMTPSettings{
		Enabled:  cfg.Mail.Enabled,
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		Username: cfg.Mail.SMTPUsername,
		Password: cfg.Mail.SMTPPassword,
		UseTLS:   cfg.Mail.SMTPUseTLS,
		Timeout:  cfg.Mail.Timeout,
	})
	if err != nil {
		logger.Fatal("failed to initialize mailer", "error", err)
	}
	return mailer
}

func newAttemptLimiter(cfg *config.Config) (model.AttemptLimiter, *redis.Client) {
	if cfg.OTP.MaxAttempts <= 0 {
		return limiter.Noop{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return limiter.NewRedis(client, cfg.OTP.MaxAttempts, cfg.OTP.TTL), client
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
