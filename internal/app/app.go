package app

import (
	"context"
	"fmt"
	"time"

	"emoheal/internal/config"
	"emoheal/internal/database"
	"emoheal/internal/httpapi"
	"emoheal/internal/logger"
	"emoheal/internal/services"
	"emoheal/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

type Application struct {
	config     *config.Config
	log        *logger.Logger
	store      database.BlobStore
	services   *services.ServiceManager
	server     *httpapi.Server
	bot        *telegram.Bot
	cron       *cron.Cron
	cancelFunc context.CancelFunc
	ctx        context.Context
}

func New(cfg *config.Config, log *logger.Logger) (*Application, error) {
	ctx, cancel := context.WithCancel(context.Background())

	store, err := openStore(ctx, cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	serviceManager := services.NewServiceManager(store, log, services.Options{
		AuthLatency:      cfg.Simulation.AuthLatency,
		DetectionLatency: cfg.Simulation.DetectionLatency,
		Capturer: services.DeviceAccess{
			Camera:     cfg.Simulation.CameraAllowed,
			Microphone: cfg.Simulation.MicrophoneAllowed,
		},
		Preference: services.StaticPreference(cfg.Simulation.PrefersDark),
	})

	gin.SetMode(cfg.Server.Mode)
	server := httpapi.NewServer(cfg.Addr(), httpapi.RouterConfig{
		Services:    serviceManager,
		Log:         log,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	app := &Application{
		config:     cfg,
		log:        log,
		store:      store,
		services:   serviceManager,
		server:     server,
		cron:       cron.New(),
		cancelFunc: cancel,
		ctx:        ctx,
	}

	if cfg.TelegramEnabled() {
		bot, err := telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID, serviceManager, log)
		if err != nil {
			cancel()
			store.Close()
			return nil, err
		}
		app.bot = bot
		serviceManager.SetNotificationSender(bot)
		if err := app.setupCronJobs(); err != nil {
			cancel()
			store.Close()
			return nil, err
		}
	} else {
		log.Warn("TG_TOKEN not set, telegram bot and notifications disabled")
	}

	return app, nil
}

func openStore(ctx context.Context, cfg *config.Config) (database.BlobStore, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := database.New(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		return database.NewRepository(db), nil
	case config.DriverRedis:
		store, err := database.NewRedisStore(ctx, database.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverMemory:
		return database.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// Start serves HTTP right away and hydrates the stores; requests get 503
// until loading completes.
func (a *Application) Start() error {
	a.log.Info("starting emoheal", "driver", a.config.Database.Driver)

	if err := a.server.Start(); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}

	if err := a.services.Load(a.ctx); err != nil {
		return fmt.Errorf("load stores: %w", err)
	}

	if a.bot != nil {
		go a.bot.Start(a.ctx)
		a.cron.Start()
		a.sendWelcomeMessage()
		a.log.Info("bot started", "username", a.bot.GetUsername())
	}

	a.log.Info("emoheal started", "addr", a.server.Addr())
	return nil
}

func (a *Application) Stop() error {
	a.log.Info("stopping emoheal")

	a.cancelFunc()
	<-a.cron.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("http shutdown failed", "error", err)
	}

	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close store", "error", err)
	}

	a.log.Info("emoheal stopped")
	a.log.Sync()
	return nil
}

func (a *Application) setupCronJobs() error {
	jobs := []struct {
		name string
		spec string
		run  func()
	}{
		{"mood reminder", a.config.Schedule.Reminder, func() { _, _ = a.services.Notification.SendMoodReminder() }},
		{"daily quote", a.config.Schedule.Quote, func() { _ = a.services.Notification.SendDailyQuote() }},
		{"daily summary", a.config.Schedule.Summary, func() { _ = a.services.Notification.SendDailySummary() }},
	}
	for _, job := range jobs {
		if job.spec == "" {
			continue
		}
		if _, err := a.cron.AddFunc(job.spec, job.run); err != nil {
			return fmt.Errorf("schedule %s %q: %w", job.name, job.spec, err)
		}
		a.log.Info("job scheduled", "job", job.name, "spec", job.spec)
	}
	return nil
}

func (a *Application) sendWelcomeMessage() {
	message := `💜 <b>EmoHeal</b>

Your wellness companion is running.

Today: ` + time.Now().Format("2006-01-02") + `

Commands:
/mood - record how you feel
/detect - detect your mood
/calendar - mood calendar
/week - weekly analytics
/quote - daily inspiration
/help - all commands`

	a.bot.SendMessageOrLogError(message)
}
