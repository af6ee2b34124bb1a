package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eursukkul/gym-reservation/config"
	"github.com/Eursukkul/gym-reservation/internal/consumer"
	"github.com/Eursukkul/gym-reservation/internal/handler"
	"github.com/Eursukkul/gym-reservation/internal/lock"
	"github.com/Eursukkul/gym-reservation/internal/middleware"
	"github.com/Eursukkul/gym-reservation/internal/repository"
	"github.com/Eursukkul/gym-reservation/internal/service"
	"github.com/Eursukkul/gym-reservation/pkg/database"
	"github.com/Eursukkul/gym-reservation/pkg/rabbitmq"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the time slot consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.ServerPort = port
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides SERVER_PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.UsesDefaultJWTSecret() {
		log.Println("[Server] WARNING: JWT_SECRET is not set, anyone can sign admin tokens with the default secret")
	}

	db := database.Open(cfg)

	locker, closeLocker, err := newSlotLocker(cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	slotRepo := repository.NewTimeSlotRepository(db)

	// RabbitMQ is optional: without RABBITMQ_URL events are neither published nor consumed.
	var publisher service.EventPublisher
	if cfg.RabbitURL != "" {
		instanceID := uuid.NewString()

		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, instanceID)
		if err != nil {
			return fmt.Errorf("connect publisher: %w", err)
		}
		defer pub.Close()
		publisher = pub

		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, instanceID)
		if err != nil {
			return fmt.Errorf("connect consumer: %w", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			return fmt.Errorf("start consuming: %w", err)
		}
		consumer.NewTimeSlotConsumer(slotRepo, instanceID).Start(msgs)
	} else {
		log.Println("[Server] RABBITMQ_URL not set, event broadcasting disabled")
	}

	e := newServer(cfg, db, locker, publisher)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Gym Reservation Service starting on :%s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("[Server] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newServer wires repositories, services and handlers onto a fresh Echo instance.
func newServer(cfg *config.Config, db *gorm.DB, locker lock.SlotLocker, publisher service.EventPublisher) *echo.Echo {
	reservationRepo := repository.NewReservationRepository(db)
	slotRepo := repository.NewTimeSlotRepository(db)

	policy := service.Policy{
		MaxGuestsPerBooking: cfg.MaxGuestsPerBooking,
		DefaultSlotCapacity: cfg.DefaultSlotCapacity,
	}
	reservationSvc := service.NewReservationService(reservationRepo, slotRepo, locker, publisher, policy)
	capacitySvc := service.NewCapacityService(reservationRepo, slotRepo, cfg.DefaultSlotCapacity)
	timeSlotSvc := service.NewTimeSlotService(slotRepo, publisher)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestIDWithConfig(echoMw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogRequestID: true,
		LogLatency:   true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d %s rid=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "gym-reservation"})
	})

	authMw := middleware.JWTAuth(cfg.JWTSecret)
	handler.NewCapacityHandler(capacitySvc, cfg.Location).RegisterRoutes(e)
	handler.NewReservationHandler(reservationSvc, cfg.Location).RegisterRoutes(e, authMw)
	handler.NewTimeSlotHandler(timeSlotSvc).RegisterRoutes(e, authMw)

	return e
}

func newSlotLocker(cfg *config.Config) (lock.SlotLocker, func(), error) {
	switch cfg.SlotLock {
	case "local", "":
		return lock.NewLocal(), func() {}, nil
	case "redis":
		rdb, err := database.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return lock.NewRedis(rdb), func() { _ = rdb.Close() }, nil
	case "none":
		log.Println("[Server] SLOT_LOCK=none, concurrent creates on one slot are not serialized")
		return lock.Noop{}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported SLOT_LOCK %q", cfg.SlotLock)
	}
}
