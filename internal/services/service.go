package services

import (
	"qrate/config"
	"qrate/internal/database"
)

type Service struct {
	Transaction *TransactionService
	Scheduler   *SchedulerService
	Analysis    *AnalysisService
}

func New(db database.DB, config config.Config) (Service, error) {
	return Service{
		Transaction: NewTransactionService(db),
		Scheduler:   NewSchedulerService(),
		Analysis:    NewAnalysisService(),
	}, nil
}
