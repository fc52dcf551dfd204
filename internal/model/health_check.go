package model

import "time"

// HealthCheck is written once per /healthz probe to prove the database accepts writes.
type HealthCheck struct {
	CheckID  uint      `gorm:"column:check_id;primaryKey;autoIncrement"`
	Datetime time.Time `gorm:"column:datetime;not null"`
}

func (HealthCheck) TableName() string {
	return "health_check"
}
