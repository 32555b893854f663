package controllers

import (
	"qrate/config"
	"qrate/internal/database"
	"qrate/internal/events"
	"qrate/internal/repositories"
	"qrate/internal/services"

	eventController "qrate/internal/controllers/events"
	requestController "qrate/internal/controllers/requests"
	songController "qrate/internal/controllers/songs"
)

type Controllers struct {
	Event   eventController.EventControllerInterface
	Song    songController.SongControllerInterface
	Request requestController.RequestControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Event:   eventController.New(repos, services, eventBus, config, db),
		Song:    songController.New(repos, services, eventBus, config, db),
		Request: requestController.New(repos, services, eventBus, config, db),
	}
}
