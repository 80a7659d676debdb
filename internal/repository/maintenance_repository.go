package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResetOrder порядок очистки таблиц: сначала зависимые
var ResetOrder = []string{
	"chat_messages",
	"chat_participants",
	"chat_conversations",
	"notes",
	"quick_notes",
	"bookings",
	"customers",
}

type MaintenanceRepository struct {
	*base.Repository
}

func NewMaintenanceRepository(pool *pgxpool.Pool) *MaintenanceRepository {
	return &MaintenanceRepository{Repository: base.NewRepository(pool)}
}

// Reset удаляет все строки рабочих таблиц. Рейсы, отели, платежи и рассрочки
// удаляются каскадом вместе с бронированиями. Настройки агентства не трогаются
func (r *MaintenanceRepository) Reset(ctx context.Context) (map[string]int64, error) {
	deleted := make(map[string]int64, len(ResetOrder))
	for _, table := range ResetOrder {
		affected, err := r.ExecAffected(ctx, "DELETE FROM "+table)
		if err != nil {
			return nil, fmt.Errorf("reset %s: %w", table, err)
		}
		deleted[table] = affected
	}
	return deleted, nil
}
