package state

import (
	"context"
	"fmt"

	"tg-notes-bot/internal/pkg/logger"
	"tg-notes-bot/pkg/store"

	"github.com/looplab/fsm"
)

const (
	EventAdvance = "advance"
	// EventFinalize is only checked; a finalized session is deleted.
	EventFinalize = "finalize"
)

var events = fsm.Events{
	{Name: EventAdvance, Src: []string{string(store.CategoryEmotions)}, Dst: string(store.CategoryTags)},
	{Name: EventFinalize, Src: []string{string(store.CategoryTags)}, Dst: string(store.CategoryTags)},
}

// Manager handles session step transitions
type Manager struct {
	logger logger.ILogger
}

// NewManager creates a new state manager
func NewManager(logger logger.ILogger) *Manager {
	return &Manager{logger: logger}
}

func (m *Manager) machine(session *store.Session) *fsm.FSM {
	step := session.Step
	if step == "" {
		step = store.CategoryEmotions
	}
	return fsm.NewFSM(string(step), events, fsm.Callbacks{})
}

// InStep reports whether the session is currently editing the given category.
func (m *Manager) InStep(session *store.Session, category store.Category) bool {
	return m.machine(session).Is(string(category))
}

// TransitionToTags moves the session from the emotions step to the tags step
func (m *Manager) TransitionToTags(ctx context.Context, session *store.Session) error {
	machine := m.machine(session)
	if err := machine.Event(ctx, EventAdvance); err != nil {
		return fmt.Errorf("cannot advance from %s: %w", session.Step, err)
	}
	session.Step = store.Category(machine.Current())
	m.logger.Debug("STATE", "Transitioned to TAGS", map[string]interface{}{
		"chat_id":  session.ChatID,
		"emotions": len(session.EmotionSelection),
	})
	return nil
}

// CanFinalize reports whether the session reached the last step.
func (m *Manager) CanFinalize(session *store.Session) bool {
	return m.machine(session).Can(EventFinalize)
}
