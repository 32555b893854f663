package models

import "strings"

// Event is a single party or session identified by a short shareable code.
// The code is immutable once assigned and never reused.
type Event struct {
	BaseUUIDModel
	Name        string  `gorm:"type:text;not null"          json:"name"`
	Theme       string  `gorm:"type:text;not null"          json:"theme"`
	Description string  `gorm:"type:text"                   json:"description"`
	Code        string  `gorm:"type:text;uniqueIndex"       json:"code"`
	Date        string  `gorm:"type:text"                   json:"date"`
	Time        string  `gorm:"type:text"                   json:"time"`
	Location    *string `gorm:"type:text"                   json:"location"`
	IsActive    bool    `gorm:"type:bool;default:true"      json:"isActive"`
}

// NormalizeEventCode uppercases a caller-supplied event code.
func NormalizeEventCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
