package main

import (
	"clinic/src/booking"
	"clinic/src/boot"
	"clinic/src/config"
	"clinic/src/db"
	"clinic/src/finalize"
	"clinic/src/lib"
	awslib "clinic/src/lib/aws"
	"clinic/src/middlewares"
	"clinic/src/tracking"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "time/tzdata"
)

const (
	apiPrefix string = "/api/v1"
)

// app holds the collaborators shared by the handlers.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	reader    booking.IntentReader
	finalizer booking.Finalizer
	service   *finalize.Service
	emitter   *tracking.Emitter
	gate      *middlewares.Gate
	qrcode    func(text string) (string, error)
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine, enabled bool) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		if enabled {
			err := errors.New("server is under maintenance")
			zap.L().Warn(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	if cfg.Env == "local" {
		return cors.Default()
	}
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "apikey")
	cc.AllowOriginFunc = func(origin string) bool {
		if cfg.AppHost == "" {
			return false
		}
		match, _ := regexp.MatchString(regexp.QuoteMeta(cfg.AppHost)+"$", origin)
		return match
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

// routes mounts every route of the site on router. Middlewares registered
// before this call apply to all of them.
func (a *app) routes(router *gin.Engine) {
	session := middlewares.SessionMiddleware(a.cfg.SessionTTL, a.cfg.IsProd())

	site := router.Group("/:locale", session, middlewares.LocaleMiddleware, a.gate.Middleware)
	bookingRoutes(site, a)

	apiv1 := apiv1Group(router)
	gateRoutes(apiv1, a, session)
	functionRoutes(apiv1, a)
	stripeWebhookRoute(apiv1, a)
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, gdb *gorm.DB, rdb redis.Cmdable) (*app, error) {
	if rdb == nil {
		return nil, errors.New("redis client is not configured")
	}
	a := &app{cfg: cfg, logger: logger, qrcode: lib.QRCodeDataURI}

	opts := []finalize.ServiceOption{finalize.WithServiceLogger(logger)}
	if cfg.CalendarID != "" && cfg.GoogleCredentialsFile != "" {
		svc, err := lib.GAPIGetCalendarService(ctx, cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("calendar client: %w", err)
		}
		loc, err := time.LoadLocation(cfg.ClinicTimezone)
		if err != nil {
			return nil, fmt.Errorf("clinic timezone: %w", err)
		}
		opts = append(opts, finalize.WithCalendar(finalize.NewGoogleCalendarBooker(svc, cfg.CalendarID, loc, cfg.AppointmentDuration)))
	}
	mailer, err := newMailer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if mailer != nil {
		opts = append(opts, finalize.WithMailer(mailer, cfg.MailFrom, cfg.MailFromName))
	}
	if cfg.SNSTopicArn != "" {
		client, err := lib.AWSGetSNSClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
		opts = append(opts, finalize.WithNotifier(awslib.NewSNSPublisher(client, cfg.SNSTopicArn)))
	}
	a.service = finalize.NewService(gdb, lib.NewStripeCheckout(lib.GetStripeClient()), opts...)

	switch cfg.FinalizeMode {
	case "remote":
		if cfg.FinalizeURL == "" {
			return nil, errors.New("FINALIZE_URL is required when FINALIZE_MODE=remote")
		}
		a.finalizer = finalize.NewEdgeClient(cfg.FinalizeURL, cfg.FinalizeAPIKey, []byte(cfg.ServiceJWTSecret), cfg.FinalizeTimeout)
	default:
		a.finalizer = a.service
	}

	a.reader = db.NewIntentReader(gdb, cfg.AnonReadWindow, logger)
	a.emitter = tracking.NewEmitter(newSink(ctx, cfg, logger), tracking.NewRedisDedupeStore(rdb), cfg.PixelID, cfg.SessionTTL, logger)
	a.gate = middlewares.NewGate(rdb, cfg.SitePasswordHash, cfg.SessionTTL)
	return a, nil
}

func newMailer(ctx context.Context, cfg *config.Config) (finalize.Mailer, error) {
	if cfg.MailFrom == "" {
		return nil, nil
	}
	switch cfg.MailDriver {
	case "ses":
		client, err := lib.AWSGetSESClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("ses client: %w", err)
		}
		return awslib.NewSESMailer(client), nil
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, nil
		}
		client, err := lib.GetSMTPClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("smtp client: %w", err)
		}
		return lib.NewSMTPMailer(client), nil
	}
	return nil, fmt.Errorf("unknown MAIL_DRIVER %q", cfg.MailDriver)
}

// newSink picks where conversion events go: SQS in the deployed
// environments, Kafka locally, the log otherwise.
func newSink(ctx context.Context, cfg *config.Config, logger *zap.Logger) tracking.Sink {
	switch cfg.Env {
	case "test", "production":
		client, err := lib.AWSGetSQSClient(ctx)
		if err != nil {
			logger.Error("sqs client unavailable, logging conversion events", zap.Error(err))
			break
		}
		return tracking.NewSQSSink(awslib.NewSQSProducer(client, cfg.ConversionQueue))
	case "local":
		p, err := lib.GetKafkaProducer(cfg.KafkaBroker, "conversion-emitter")
		if err != nil {
			logger.Error("kafka producer unavailable, logging conversion events", zap.Error(err))
			break
		}
		return tracking.NewKafkaSink(p, cfg.ConversionTopic)
	}
	return tracking.NewLogSink(logger)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %s", err)
	}
	config.Set(cfg)
	logger := lib.InitLogger(cfg.LogDir, cfg.IsProd())
	defer logger.Sync()

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	gdb := boot.InitDb()
	if err := lib.PingRedis(ctx); err != nil {
		logger.Warn("redis is not reachable", zap.Error(err))
	}

	rdb := lib.GetRedisClient()
	if rdb == nil {
		logger.Fatal("Failed to initialize redis client")
	}
	a, err := newApp(ctx, cfg, logger, gdb, rdb)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	boot.InitScheduler(cfg, a.service)

	router := setupRouter()
	router.Use(corsMiddleware(cfg))
	router.Use(middlewares.RateLimitMiddleware(cfg.RateLimitPerMin))
	router = maintenanceModeMiddleware(router, cfg.MaintenanceMode)
	a.routes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: router,
	}
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	boot.StopScheduler()
	a.service.Wait()
	lib.CloseKafkaProducer()
	logger.Info("Server exited")
}
