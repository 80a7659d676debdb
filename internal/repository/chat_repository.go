package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepository struct {
	*base.Repository
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{Repository: base.NewRepository(pool)}
}

// CreateConversation создаёт беседу. Участников добавляют через AddParticipant
func (r *ChatRepository) CreateConversation(ctx context.Context) (*model.Conversation, error) {
	var c model.Conversation
	err := r.QueryRow(ctx, `INSERT INTO chat_conversations DEFAULT VALUES RETURNING id, last_message_at, created_at`).
		Scan(&c.ID, &c.LastMessageAt, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &c, nil
}

// AddParticipant добавляет сотрудника в беседу. Повторное добавление ничего не меняет
func (r *ChatRepository) AddParticipant(ctx context.Context, conversationID, employeeID string) (*model.ChatParticipant, error) {
	query := `
		INSERT INTO chat_participants (conversation_id, employee_id)
		VALUES ($1, $2)
		ON CONFLICT (conversation_id, employee_id) DO UPDATE SET employee_id = EXCLUDED.employee_id
		RETURNING id, conversation_id, employee_id, last_read_at
	`

	var p model.ChatParticipant
	err := r.QueryRow(ctx, query, conversationID, employeeID).Scan(&p.ID, &p.ConversationID, &p.EmployeeID, &p.LastReadAt)
	if err != nil {
		return nil, fmt.Errorf("add chat participant: %w", err)
	}
	return &p, nil
}

// ListConversations беседы сотрудника с участниками и сообщениями, свежие сначала
func (r *ChatRepository) ListConversations(ctx context.Context, employeeID string) ([]*model.Conversation, error) {
	query := `
		SELECT c.id, c.last_message_at, c.created_at
		FROM chat_conversations c
		WHERE EXISTS (
			SELECT 1 FROM chat_participants p
			WHERE p.conversation_id = c.id AND p.employee_id = $1
		)
		ORDER BY c.last_message_at DESC
	`

	rows, err := r.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	var conversations []*model.Conversation
	byID := make(map[string]*model.Conversation)
	var ids []string
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.ID, &c.LastMessageAt, &c.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		c.Participants = []*model.ChatParticipant{}
		c.Messages = []*model.ChatMessage{}
		conversations = append(conversations, &c)
		byID[c.ID] = &c
		ids = append(ids, c.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if len(ids) == 0 {
		return conversations, nil
	}

	if err := r.loadParticipants(ctx, ids, byID); err != nil {
		return nil, err
	}
	if err := r.loadMessages(ctx, ids, byID); err != nil {
		return nil, err
	}

	return conversations, nil
}

// AddMessage сохраняет сообщение и сдвигает last_message_at беседы
func (r *ChatRepository) AddMessage(ctx context.Context, m *model.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (conversation_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, is_read, created_at
	`

	err := r.QueryRow(ctx, query, m.ConversationID, m.SenderID, m.Content).Scan(&m.ID, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("add chat message: %w", err)
	}

	err = r.Exec(ctx, `UPDATE chat_conversations SET last_message_at = $2 WHERE id = $1`, m.ConversationID, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	return nil
}

// MarkAsRead отмечает беседу прочитанной сотрудником на момент at
func (r *ChatRepository) MarkAsRead(ctx context.Context, conversationID, employeeID string, at time.Time) (bool, error) {
	affected, err := r.ExecAffected(ctx,
		`UPDATE chat_participants SET last_read_at = $3 WHERE conversation_id = $1 AND employee_id = $2`,
		conversationID, employeeID, at,
	)
	if err != nil {
		return false, fmt.Errorf("mark conversation read: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	err = r.Exec(ctx, `
		UPDATE chat_messages SET is_read = TRUE, read_at = $3
		WHERE conversation_id = $1 AND sender_id <> $2 AND NOT is_read AND created_at <= $3
	`, conversationID, employeeID, at)
	if err != nil {
		return false, fmt.Errorf("mark messages read: %w", err)
	}

	return true, nil
}

func (r *ChatRepository) loadParticipants(ctx context.Context, ids []string, byID map[string]*model.Conversation) error {
	rows, err := r.Query(ctx, `
		SELECT id, conversation_id, employee_id, last_read_at
		FROM chat_participants
		WHERE conversation_id = ANY($1)
	`, ids)
	if err != nil {
		return fmt.Errorf("list chat participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p model.ChatParticipant
		if err := rows.Scan(&p.ID, &p.ConversationID, &p.EmployeeID, &p.LastReadAt); err != nil {
			return fmt.Errorf("scan chat participant: %w", err)
		}
		if c := byID[p.ConversationID]; c != nil {
			c.Participants = append(c.Participants, &p)
		}
	}
	return rows.Err()
}

func (r *ChatRepository) loadMessages(ctx context.Context, ids []string, byID map[string]*model.Conversation) error {
	rows, err := r.Query(ctx, `
		SELECT id, conversation_id, sender_id, content, is_read, read_at, created_at
		FROM chat_messages
		WHERE conversation_id = ANY($1)
		ORDER BY created_at
	`, ids)
	if err != nil {
		return fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.IsRead, &m.ReadAt, &m.CreatedAt); err != nil {
			return fmt.Errorf("scan chat message: %w", err)
		}
		if c := byID[m.ConversationID]; c != nil {
			c.Messages = append(c.Messages, &m)
		}
	}
	return rows.Err()
}
