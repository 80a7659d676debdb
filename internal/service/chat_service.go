package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/agency_backoffice/internal/model"
	"github.com/Freeeeeet/agency_backoffice/internal/repository/base"
	"go.uber.org/zap"
)

type ChatRepository interface {
	CreateConversation(ctx context.Context) (*model.Conversation, error)
	AddParticipant(ctx context.Context, conversationID, employeeID string) (*model.ChatParticipant, error)
	ListConversations(ctx context.Context, employeeID string) ([]*model.Conversation, error)
	AddMessage(ctx context.Context, m *model.ChatMessage) error
	MarkAsRead(ctx context.Context, conversationID, employeeID string, at time.Time) (bool, error)
}

// ChatService внутренние беседы сотрудников
type ChatService struct {
	repo   ChatRepository
	tx     base.Transactor
	logger *zap.Logger
	now    func() time.Time
}

func NewChatService(repo ChatRepository, tx base.Transactor, logger *zap.Logger) *ChatService {
	return &ChatService{
		repo:   repo,
		tx:     tx,
		logger: logger,
		now:    time.Now,
	}
}

// Start создаёт беседу между сотрудниками. Создатель добавляется всегда
func (s *ChatService) Start(ctx context.Context, creatorID string, employeeIDs ...string) (*model.Conversation, error) {
	const action = "start conversation"

	members := uniqueIDs(append([]string{creatorID}, employeeIDs...))
	if creatorID == "" || len(members) < 2 {
		return nil, validationError(action, "conversation needs at least two participants", "participants")
	}

	var conv *model.Conversation
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		conv, err = s.repo.CreateConversation(ctx)
		if err != nil {
			return err
		}
		for _, id := range members {
			p, err := s.repo.AddParticipant(ctx, conv.ID, id)
			if err != nil {
				return err
			}
			conv.Participants = append(conv.Participants, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	conv.Messages = []*model.ChatMessage{}
	s.logger.Info("Conversation started",
		zap.String("conversation_id", conv.ID),
		zap.Int("participants", len(members)),
	)
	return conv, nil
}

// AddParticipant добавляет сотрудника в существующую беседу
func (s *ChatService) AddParticipant(ctx context.Context, conversationID, employeeID string) (*model.ChatParticipant, error) {
	const action = "add chat participant"

	if missing := requireFields([2]string{"conversation_id", conversationID}, [2]string{"employee_id", employeeID}); len(missing) > 0 {
		return nil, validationError(action, "missing required fields", missing...)
	}

	p, err := s.repo.AddParticipant(ctx, conversationID, employeeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return p, nil
}

func (s *ChatService) List(ctx context.Context, employeeID string) ([]*model.Conversation, error) {
	convs, err := s.repo.ListConversations(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

// UnreadCount сообщений, которые сотрудник ещё не видел, по всем беседам
func (s *ChatService) UnreadCount(ctx context.Context, employeeID string) (int, error) {
	convs, err := s.List(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range convs {
		total += c.UnreadFor(employeeID)
	}
	return total, nil
}

func (s *ChatService) Send(ctx context.Context, m *model.ChatMessage) (*model.ChatMessage, error) {
	const action = "send message"

	m.Content = strings.TrimSpace(m.Content)
	missing := requireFields(
		[2]string{"conversation_id", m.ConversationID},
		[2]string{"sender_id", m.SenderID},
		[2]string{"content", m.Content},
	)
	if len(missing) > 0 {
		return nil, validationError(action, "missing required fields", missing...)
	}

	if err := s.repo.AddMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	return m, nil
}

// MarkAsRead отмечает все сообщения беседы прочитанными на текущий момент
func (s *ChatService) MarkAsRead(ctx context.Context, conversationID, employeeID string) error {
	ok, err := s.repo.MarkAsRead(ctx, conversationID, employeeID, s.now())
	if err != nil {
		return fmt.Errorf("mark as read: %w", err)
	}
	if !ok {
		return notFound("chat participant", conversationID+"/"+employeeID)
	}
	return nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
