package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"go.uber.org/zap"
)

type MaintenanceRepository interface {
	Reset(ctx context.Context) (map[string]int64, error)
}

// MaintenanceService административные операции над базой
type MaintenanceService struct {
	repo   MaintenanceRepository
	tx     base.Transactor
	logger *zap.Logger
}

func NewMaintenanceService(repo MaintenanceRepository, tx base.Transactor, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{
		repo:   repo,
		tx:     tx,
		logger: logger,
	}
}

// Reset удаляет все рабочие данные одной транзакцией. Настройки агентства остаются
func (s *MaintenanceService) Reset(ctx context.Context) (map[string]int64, error) {
	var deleted map[string]int64

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = s.repo.Reset(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reset database: %w", err)
	}

	fields := make([]zap.Field, 0, len(deleted))
	for table, n := range deleted {
		fields = append(fields, zap.Int64(table, n))
	}
	s.logger.Warn("Database reset", fields...)

	return deleted, nil
}
