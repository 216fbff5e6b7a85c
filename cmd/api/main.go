package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	config "github.com/anjiri1684/educonnect/configs"
	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/anjiri1684/educonnect/jobs"
	"github.com/anjiri1684/educonnect/metrics"
	"github.com/anjiri1684/educonnect/middleware"
	"github.com/anjiri1684/educonnect/notifications"
	"github.com/anjiri1684/educonnect/payments"
	"github.com/anjiri1684/educonnect/routes"
	"github.com/anjiri1684/educonnect/services"
	"github.com/anjiri1684/educonnect/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
)

const reminderSchedule = "0 8 * * *"

func setupLogging(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open document store")
	}

	if cfg.AdminConfigured() {
		res, err := database.SeedAdmin(ctx, store, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
		if err != nil {
			log.Error().Err(err).Msg("admin seeding failed")
		} else {
			log.Info().Str("email", cfg.AdminEmail).Stringer("result", res).Msg("admin account checked")
		}
	}

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	hub := websocket.NewHub(collector)
	sinks := []services.SessionEventSink{collector, hub}

	var mailer notifications.Mailer
	if brevo := notifications.NewBrevoService(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName); brevo != nil {
		mailer = brevo
		sinks = append(sinks, notifications.NewEmailNotifier(brevo))
	}

	media, err := services.NewCloudinaryMedia(cfg.CloudinaryURL)
	if err != nil {
		log.Error().Err(err).Msg("cloudinary is misconfigured, uploads are disabled")
	}
	var intents payments.IntentCreator
	if stripe := payments.NewStripeService(cfg.StripeSecretKey); stripe != nil {
		intents = stripe
	}

	clean := services.NewSanitizer()
	users := services.NewUserService(store, clean)
	sessions := services.NewSessionService(store, users, clean, sinks...)
	tokens := services.NewTokenService(cfg.AccessTokenSecret, cfg.AccessTokenTTL)

	h := &handlers.Handler{
		AppName:   cfg.AppName,
		Store:     store,
		Tokens:    tokens,
		Users:     users,
		Sessions:  sessions,
		Reviews:   services.NewReviewService(store, clean),
		Notes:     services.NewNoteService(store, clean),
		Materials: services.NewMaterialService(store, users, clean),
		Bookings:  services.NewBookingService(store, sessions),
		Payments:  intents,
		Renderer:  services.NewChromeRenderer(),
		Media:     media,
		Hub:       hub,
	}

	scheduler := jobs.NewScheduler()
	if cfg.JobsEnabled {
		scheduled := []jobs.Job{
			{Name: "store-ping", Schedule: cfg.StorePingSchedule, Run: jobs.StorePing(store, collector)},
		}
		if cfg.AdminConfigured() {
			scheduled = append(scheduled, jobs.Job{
				Name:     "admin-check",
				Schedule: cfg.AdminCheckSchedule,
				Run:      jobs.AdminCheck(store, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName),
			})
		}
		if mailer != nil {
			scheduled = append(scheduled, jobs.Job{
				Name:     "class-reminders",
				Schedule: reminderSchedule,
				Run:      jobs.ClassReminders(store, mailer, time.Now),
			})
		}
		for _, job := range scheduled {
			if err := scheduler.Add(job); err != nil {
				log.Fatal().Err(err).Msg("failed to schedule job")
			}
		}
		scheduler.Start()
	}

	limiter := middleware.NewRateLimiter(cfg.TokenRatePerMin)

	app := fiber.New(fiber.Config{
		AppName:       cfg.AppName,
		CaseSensitive: true,
		StrictRouting: false,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Int("status", code).Msg("request failed")
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		MaxAge:       86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(middleware.Metrics(collector))

	routes.Register(app, h, routes.Guard{
		Protected: middleware.Protected(tokens),
		Admins:    users,
		Limiter:   limiter.Handler(),
	}, metrics.Handler(prometheus.DefaultGatherer))

	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server is running")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = app.ShutdownWithContext(shutdownCtx)
	stopHub()
	scheduler.Stop()
	limiter.Stop()
	err = multierr.Append(err, store.Close(shutdownCtx))
	if err != nil {
		log.Error().Err(err).Msg("shutdown finished with errors")
		os.Exit(1)
	}
	log.Info().Msg("shutdown complete")
}
