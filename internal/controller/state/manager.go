package state

import (
	"sync"
	"time"
)

// Manager управляет состояниями диалогов по chat id
type Manager struct {
	mu     sync.RWMutex
	states map[int64]ChatData // chatID -> ChatData
	ttl    time.Duration
	now    func() time.Time
}

// NewManager создаёт новый менеджер состояний. Состояние старше ttl считается сброшенным
func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		states: make(map[int64]ChatData),
		ttl:    ttl,
		now:    time.Now,
	}
}

// GetState получает текущее состояние чата
func (sm *Manager) GetState(chatID int64) ChatState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	data, exists := sm.states[chatID]
	if !exists {
		return StateNone
	}
	if sm.ttl > 0 && sm.now().Sub(data.StartedAt) > sm.ttl {
		return StateNone
	}
	return data.State
}

// SetState устанавливает состояние чата
func (sm *Manager) SetState(chatID int64, state ChatState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		// Если состояние None, удаляем запись
		delete(sm.states, chatID)
		return
	}
	sm.states[chatID] = ChatData{State: state, StartedAt: sm.now()}
}

// Take возвращает состояние и сразу очищает его
func (sm *Manager) Take(chatID int64) ChatState {
	state := sm.GetState(chatID)
	sm.ClearState(chatID)
	return state
}

// ClearState очищает состояние чата
func (sm *Manager) ClearState(chatID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, chatID)
}
