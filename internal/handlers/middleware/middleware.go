package middleware

import (
	"qrate/config"
	"qrate/internal/database"
	"qrate/internal/events"
	"qrate/internal/repositories"
	logger "github.com/Bparsons0904/goLogger"
)

type Middleware struct {
	DB       database.DB
	Config   config.Config
	log      logger.Logger
	eventBus *events.EventBus
	repos    repositories.Repository
}

func New(
	db database.DB,
	eventBus *events.EventBus,
	config config.Config,
	repos repositories.Repository,
) Middleware {
	return Middleware{
		DB:       db,
		Config:   config,
		log:      logger.New("middleware"),
		eventBus: eventBus,
		repos:    repos,
	}
}
