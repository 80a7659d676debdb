package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const participantColumns = `id, booking_id, salutation, first_name, last_name, date_of_birth,
	ticket_number, passport_number, passport_expiry, comments, created_at`

type ParticipantRepository struct {
	*base.Repository
}

func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{Repository: base.NewRepository(pool)}
}

// Create добавляет путешественника
func (r *ParticipantRepository) Create(ctx context.Context, p *model.Participant) error {
	query := `
		INSERT INTO booking_participants (
			booking_id, salutation, first_name, last_name, date_of_birth,
			ticket_number, passport_number, passport_expiry, comments
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		p.BookingID, p.Salutation, p.FirstName, p.LastName, p.DateOfBirth,
		p.TicketNumber, p.PassportNumber, p.PassportExpiry, p.Comments,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return fmt.Errorf("create participant: %w", err)
	}

	return nil
}

// ListByBooking путешественники бронирования
func (r *ParticipantRepository) ListByBooking(ctx context.Context, bookingID string) ([]*model.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM booking_participants WHERE booking_id = $1 ORDER BY created_at`

	rows, err := r.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []*model.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// Update перезаписывает данные путешественника
func (r *ParticipantRepository) Update(ctx context.Context, p *model.Participant) (bool, error) {
	query := `
		UPDATE booking_participants
		SET salutation = $2, first_name = $3, last_name = $4, date_of_birth = $5,
		    ticket_number = $6, passport_number = $7, passport_expiry = $8, comments = $9
		WHERE id = $1
	`

	affected, err := r.ExecAffected(
		ctx, query,
		p.ID, p.Salutation, p.FirstName, p.LastName, p.DateOfBirth,
		p.TicketNumber, p.PassportNumber, p.PassportExpiry, p.Comments,
	)
	if err != nil {
		return false, fmt.Errorf("update participant: %w", err)
	}
	return affected > 0, nil
}

// Delete удаляет путешественника
func (r *ParticipantRepository) Delete(ctx context.Context, id string) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM booking_participants WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete participant: %w", err)
	}
	return affected > 0, nil
}

func scanParticipant(row pgx.Row) (*model.Participant, error) {
	var p model.Participant
	err := row.Scan(
		&p.ID, &p.BookingID, &p.Salutation, &p.FirstName, &p.LastName, &p.DateOfBirth,
		&p.TicketNumber, &p.PassportNumber, &p.PassportExpiry, &p.Comments, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
