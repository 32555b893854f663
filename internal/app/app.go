package app

import (
	"context"
	"time"

	"qrate/config"
	"qrate/internal/controllers"
	"qrate/internal/database"
	"qrate/internal/events"
	"qrate/internal/handlers/middleware"
	"qrate/internal/jobs"
	"qrate/internal/repositories"
	"qrate/internal/services"
	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	EventBus    *events.EventBus
	Config      config.Config
	Services    services.Service
	Repos       repositories.Repository
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events)

	repos := repositories.New(db)

	svcs, err := services.New(db, config)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	mw := middleware.New(db, eventBus, config, repos)
	ctrls := controllers.New(svcs, repos, eventBus, config, db)

	if config.SchedulerEnabled {
		sessionCleanupJob := jobs.NewSessionCleanupJob(
			repos.Session,
			time.Duration(config.SessionIdleMinutes)*time.Minute,
			services.QuarterHourly,
		)
		if err := svcs.Scheduler.AddJob(sessionCleanupJob); err != nil {
			return &App{}, log.Err("failed to register session cleanup job", err)
		}
		if err := svcs.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
		log.Info("Registered session cleanup job with scheduler")
	}

	app := &App{
		Database:    db,
		Middleware:  mw,
		EventBus:    eventBus,
		Config:      config,
		Services:    svcs,
		Repos:       repos,
		Controllers: ctrls,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")

	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}
	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.EventBus,
		a.Services.Transaction,
		a.Services.Scheduler,
		a.Services.Analysis,
		a.Controllers.Event,
		a.Controllers.Song,
		a.Controllers.Request,
	}
	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
