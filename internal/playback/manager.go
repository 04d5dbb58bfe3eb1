package playback

import (
	"sync"
	"time"

	"github.com/vrsandeep/homebase/internal/events"
	"github.com/vrsandeep/homebase/internal/logger"
)

// Manager holds one controller per user, created on first use.
type Manager struct {
	mu           sync.Mutex
	controllers  map[int64]*Controller
	store        Store
	bus          *events.Bus
	log          logger.Logger
	saveInterval time.Duration

	// NewElement builds the element for a new controller.
	NewElement func() Element
}

func NewManager(st Store, bus *events.Bus, log logger.Logger, saveInterval time.Duration) *Manager {
	if log == nil {
		log = logger.NewNop()
	}
	return &Manager{
		controllers:  make(map[int64]*Controller),
		store:        st,
		bus:          bus,
		log:          log,
		saveInterval: saveInterval,
		NewElement:   func() Element { return NewVirtualElement() },
	}
}

// For returns the user's controller.
func (m *Manager) For(userID int64) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controllers[userID]
	if !ok {
		c = NewController(userID, m.store, m.bus, m.log, m.NewElement(), m.saveInterval)
		m.controllers[userID] = c
	}
	return c
}

// Close shuts every controller down.
func (m *Manager) Close() {
	m.mu.Lock()
	controllers := m.controllers
	m.controllers = make(map[int64]*Controller)
	m.mu.Unlock()

	for _, c := range controllers {
		c.Close()
	}
}
