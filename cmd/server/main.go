package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/Freeeeeet/lesson_booking/internal/api"
	"github.com/Freeeeeet/lesson_booking/internal/app"
	"github.com/Freeeeeet/lesson_booking/internal/config"
	"github.com/Freeeeeet/lesson_booking/internal/events"
	"github.com/Freeeeeet/lesson_booking/internal/notify"
	"github.com/Freeeeeet/lesson_booking/internal/payment"
	"github.com/Freeeeeet/lesson_booking/internal/render"
	"github.com/Freeeeeet/lesson_booking/internal/repository"
	"github.com/Freeeeeet/lesson_booking/internal/repository/memory"
	"github.com/Freeeeeet/lesson_booking/internal/service"
	"github.com/Freeeeeet/lesson_booking/migrations"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// stores хранилища, на которых работают сервисы
type stores struct {
	slots     service.SlotStore
	bookings  service.BookingStore
	teachers  service.TeacherStore
	matches   service.MatchStore
	recurring service.RecurringStore
	settings  service.SettingsStore
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting lesson booking service",
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.StoreDriver),
		zap.String("timezone", cfg.Timezone),
		zap.Bool("telegram", cfg.TelegramToken != ""))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Service stopped with error", zap.Error(err))
	}

	logger.Info("Service stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	var (
		bus   events.Bus = events.NewMemoryBus(logger)
		cache render.Cache = render.NopCache{}
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("✅ Connected to Redis", zap.String("addr", cfg.RedisAddr))

		bus = events.NewRedisBus(client, events.DefaultChannel, logger)
		cache = render.NewRedisCache(client, render.DefaultCacheTTL)
	}

	var payments payment.Handoff = payment.NewLogHandoff(cfg.Currency, logger)
	if cfg.AMQPURL != "" {
		amqpHandoff, err := payment.NewAMQPHandoff(cfg.AMQPURL, cfg.PaymentQueue, cfg.Currency, logger)
		if err != nil {
			return err
		}
		defer amqpHandoff.Close()
		payments = amqpHandoff
	}

	location := cfg.Location()
	availability := service.NewAvailabilityService(st.slots, st.recurring, st.teachers, bus, location, logger)
	bookings := service.NewBookingService(st.bookings, st.teachers, st.matches, bus, payments, logger)
	teachers := service.NewTeacherService(st.teachers, bus, logger)
	gate := service.NewGateService(st.settings, logger)
	weeks := render.NewService(availability, teachers, render.NewWeekRenderer(location), cache, logger)

	server := api.NewServer(api.Options{
		Addr:           cfg.HTTPAddr,
		IdentitySecret: cfg.IdentitySecret,
		WeeksAhead:     cfg.RecurringWeeksAhead,
	}, api.Services{
		Availability: availability,
		Bookings:     bookings,
		Teachers:     teachers,
		Gate:         gate,
		Weeks:        weeks,
	}, logger)

	scheduler := app.NewScheduler(availability, cfg.RecurringInterval, cfg.RecurringWeeksAhead, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })
	g.Go(func() error { return bus.Subscribe(gctx, weeks.HandleEvent) })

	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create telegram bot: %w", err)
		}

		notifier := notify.NewNotifier(b, teachers, bookings, weeks, cfg.Currency, location, logger)
		if err := notifier.RegisterHandlers(ctx, b); err != nil {
			logger.Warn("Bot commands menu not set", zap.Error(err))
		}

		g.Go(func() error {
			logger.Info("Starting bot...")
			b.Start(gctx)
			return nil
		})
		g.Go(func() error { return bus.Subscribe(gctx, notifier.HandleEvent) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		m := memory.New()
		return &stores{
			slots:     m.Slots(),
			bookings:  m.Bookings(),
			teachers:  m.Teachers(),
			matches:   m.Matches(),
			recurring: m.Recurring(),
			settings:  m.Settings(),
			close:     func() {},
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("✅ Connected to database")

	if cfg.MigrationsEnabled {
		migrator, err := app.NewMigrator(pool, migrations.FS, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		err = migrator.Run(ctx)
		_ = migrator.Close()
		if err != nil {
			pool.Close()
			return nil, err
		}
	}

	return &stores{
		slots:     repository.NewSlotRepository(pool),
		bookings:  repository.NewBookingRepository(pool),
		teachers:  repository.NewTeacherRepository(pool),
		matches:   repository.NewMatchRepository(pool),
		recurring: repository.NewRecurringRepository(pool, logger),
		settings:  repository.NewSettingsRepository(pool),
		close:     pool.Close,
	}, nil
}
