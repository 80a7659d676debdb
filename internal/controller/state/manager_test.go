package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManagerStates(t *testing.T) {
	t.Parallel()

	m := NewManager(time.Minute)

	assert.Equal(t, StateNone, m.GetState(1))

	m.SetState(1, StateAwaitingNote)
	m.SetState(2, StateAwaitingAirport)
	assert.Equal(t, StateAwaitingNote, m.GetState(1))
	assert.Equal(t, StateAwaitingAirport, m.GetState(2))

	assert.Equal(t, StateAwaitingNote, m.Take(1))
	assert.Equal(t, StateNone, m.GetState(1))

	m.SetState(2, StateNone)
	assert.Equal(t, StateNone, m.GetState(2))
}

func TestManagerExpiresStaleState(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	m := NewManager(10 * time.Minute)
	m.now = func() time.Time { return now }

	m.SetState(1, StateAwaitingBooking)

	now = now.Add(9 * time.Minute)
	assert.Equal(t, StateAwaitingBooking, m.GetState(1))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, StateNone, m.GetState(1))
	assert.Equal(t, StateNone, m.Take(1))
}

func TestManagerConcurrentAccess(t *testing.T) {
	t.Parallel()

	m := NewManager(0)

	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(chatID int64) {
			defer wg.Done()
			m.SetState(chatID, StateAwaitingNote)
			m.GetState(chatID)
			m.ClearState(chatID)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, StateNone, m.GetState(7))
}
