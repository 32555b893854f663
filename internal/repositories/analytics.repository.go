package repositories

import (
	"context"
	"encoding/json"

	"qrate/internal/database"
	. "qrate/internal/models"
	logger "github.com/Bparsons0904/goLogger"

	"gorm.io/datatypes"
)

type AnalyticsRepository interface {
	Record(ctx context.Context, eventCode, metricName string, metadata map[string]any)
	ListByEvent(ctx context.Context, eventCode string) ([]RequestMetric, error)
}

type analyticsRepository struct {
	db  database.DB
	log logger.Logger
}

func NewAnalyticsRepository(db database.DB) AnalyticsRepository {
	return &analyticsRepository{
		db:  db,
		log: logger.New("analyticsRepository"),
	}
}

// Record appends one metric row. Analytics are advisory; failures are logged
// and never surfaced to the request path that triggered them.
func (r *analyticsRepository) Record(ctx context.Context, eventCode, metricName string, metadata map[string]any) {
	log := r.log.Function("Record")

	metric := RequestMetric{
		EventCode:   eventCode,
		MetricName:  metricName,
		MetricValue: 1,
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			log.Er("failed to encode metric metadata", err, "metric", metricName)
		} else {
			metric.Metadata = datatypes.JSON(raw)
		}
	}

	if err := r.db.SQLWithContext(ctx).Create(&metric).Error; err != nil {
		log.Er("failed to record metric", err, "eventCode", eventCode, "metric", metricName)
	}
}

func (r *analyticsRepository) ListByEvent(ctx context.Context, eventCode string) ([]RequestMetric, error) {
	log := r.log.Function("ListByEvent")

	var metrics []RequestMetric
	err := r.db.SQLWithContext(ctx).
		Where("event_code = ?", eventCode).
		Order("created_at ASC").
		Find(&metrics).Error
	if err != nil {
		return nil, log.Err("failed to list metrics", err, "eventCode", eventCode)
	}

	return metrics, nil
}
