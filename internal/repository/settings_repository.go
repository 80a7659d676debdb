package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	*base.Repository
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{Repository: base.NewRepository(pool)}
}

// Get настройки агентства. nil, если они ещё не сохранялись
func (r *SettingsRepository) Get(ctx context.Context) (*model.AgencySettings, error) {
	var s model.AgencySettings
	err := r.QueryRow(ctx, `
		SELECT agency_name, country, address, email, phone
		FROM agency_settings
		WHERE id = 1
	`).Scan(&s.AgencyName, &s.Country, &s.Address, &s.Email, &s.Phone)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get agency settings: %w", err)
	}

	rows, err := r.Query(ctx, `SELECT code, name, country, is_eu FROM agency_airports ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list agency airports: %w", err)
	}
	defer rows.Close()

	s.Airports = []model.AgencyAirport{}
	for rows.Next() {
		var a model.AgencyAirport
		if err := rows.Scan(&a.Code, &a.Name, &a.Country, &a.IsEU); err != nil {
			return nil, fmt.Errorf("scan agency airport: %w", err)
		}
		s.Airports = append(s.Airports, a)
	}

	return &s, rows.Err()
}

// Save перезаписывает настройки и таблицу аэропортов. Вызывать в транзакции
func (r *SettingsRepository) Save(ctx context.Context, s model.AgencySettings) error {
	err := r.Exec(ctx, `
		INSERT INTO agency_settings (id, agency_name, country, address, email, phone, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE
		SET agency_name = EXCLUDED.agency_name,
		    country = EXCLUDED.country,
		    address = EXCLUDED.address,
		    email = EXCLUDED.email,
		    phone = EXCLUDED.phone,
		    updated_at = NOW()
	`, s.AgencyName, s.Country, s.Address, s.Email, s.Phone)
	if err != nil {
		return fmt.Errorf("save agency settings: %w", err)
	}

	if err := r.Exec(ctx, `DELETE FROM agency_airports`); err != nil {
		return fmt.Errorf("clear agency airports: %w", err)
	}
	if len(s.Airports) == 0 {
		return nil
	}

	rows := make([][]interface{}, 0, len(s.Airports))
	for _, a := range s.Airports {
		rows = append(rows, []interface{}{a.Code, a.Name, a.Country, a.IsEU})
	}

	tx := base.TxFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("save agency airports: transaction required")
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"agency_airports"},
		[]string{"code", "name", "country", "is_eu"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy agency airports: %w", err)
	}

	return nil
}
