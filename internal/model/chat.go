package model

import "time"

type ChatParticipant struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	EmployeeID     string    `json:"employee_id"`
	LastReadAt     time.Time `json:"last_read_at"`
}

type ChatMessage struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Content        string     `json:"content"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type Conversation struct {
	ID            string             `json:"id"`
	LastMessageAt time.Time          `json:"last_message_at"`
	CreatedAt     time.Time          `json:"created_at"`
	Participants  []*ChatParticipant `json:"participants"`
	Messages      []*ChatMessage     `json:"messages"`
}

// UnreadFor количество сообщений, пришедших после последнего прочтения сотрудником
func (c *Conversation) UnreadFor(employeeID string) int {
	var lastRead time.Time
	for _, p := range c.Participants {
		if p.EmployeeID == employeeID {
			lastRead = p.LastReadAt
			break
		}
	}

	unread := 0
	for _, m := range c.Messages {
		if m.SenderID != employeeID && m.CreatedAt.After(lastRead) {
			unread++
		}
	}
	return unread
}
