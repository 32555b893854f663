package models

import "gorm.io/datatypes"

// RequestMetric is one analytics event emitted by the request lifecycle
// (request_submitted, request_accepted, request_played, ...). Rows are append
// only.
type RequestMetric struct {
	BaseModel
	EventCode   string         `gorm:"type:text;not null;index" json:"eventCode"`
	MetricName  string         `gorm:"type:text;not null"       json:"metricName"`
	MetricValue int            `gorm:"type:int;default:1"       json:"metricValue"`
	Metadata    datatypes.JSON `json:"metadata"`
}
