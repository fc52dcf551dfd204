package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/neu-csye6225/webapp/internal/model"
)

type HealthCheckRepository interface {
	// Record inserts one health_check row.
	Record(ctx context.Context) (*model.HealthCheck, error)
}

type healthCheckRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewHealthCheckRepository(db *gorm.DB, timeout time.Duration) HealthCheckRepository {
	return &healthCheckRepository{db: db, timeout: timeout}
}

func (r *healthCheckRepository) Record(ctx context.Context) (*model.HealthCheck, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	check := &model.HealthCheck{Datetime: time.Now().UTC()}
	if err := r.db.WithContext(ctx).Create(check).Error; err != nil {
		return nil, fmt.Errorf("failed to record health check: %w", err)
	}
	return check, nil
}
