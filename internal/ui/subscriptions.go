package ui

import (
	"context"
	"fmt"

	"github.com/dshills/chordboard/internal/event"
)

// subscribe keeps the model in step with the engine. Handlers run on the
// engine's goroutine, so they only touch the model under the lock and wake
// the draw loop.
func (u *UI) subscribe() error {
	handlers := map[event.Topic]func(m *Model, ev any){
		event.TopicSlotsChanged: func(m *Model, ev any) {
			if e, ok := ev.(event.Event[event.SlotsChanged]); ok {
				m.SetSlots(e.Payload.Slots)
			}
		},
		event.TopicCaptureChanged: func(m *Model, ev any) {
			if e, ok := ev.(event.Event[event.CaptureChanged]); ok {
				m.SetCapture(e.Payload.Slot, e.Payload.Text, e.Payload.Building, e.Payload.Armed)
			}
		},
		event.TopicChordFinalized: func(m *Model, ev any) {
			e, ok := ev.(event.Event[event.ChordFinalized])
			if !ok {
				return
			}
			m.SetChord(e.Payload.Slot, e.Payload.Text)
			if e.Payload.Swapped != 0 {
				m.Status = fmt.Sprintf("slot %d: %s (swapped with slot %d)", e.Payload.Slot, e.Payload.Text, e.Payload.Swapped)
			} else {
				m.Status = fmt.Sprintf("slot %d: %s", e.Payload.Slot, e.Payload.Text)
			}
		},
		event.TopicBindingFired: func(m *Model, ev any) {
			if e, ok := ev.(event.Event[event.BindingFired]); ok {
				name := e.Payload.Label
				if name == "" {
					name = fmt.Sprintf("slot %d", e.Payload.Slot)
				}
				m.Status = fmt.Sprintf("%s > %s", e.Payload.Chord, name)
			}
		},
		event.TopicRegistrationConflict: func(m *Model, ev any) {
			if e, ok := ev.(event.Event[event.RegistrationConflict]); ok {
				m.Status = fmt.Sprintf("%s unavailable: %s", e.Payload.Chord, e.Payload.Reason)
			}
		},
		event.TopicHotkeysToggled: func(m *Model, ev any) {
			if e, ok := ev.(event.Event[event.HotkeysToggled]); ok {
				m.Active = e.Payload.Active
			}
		},
		event.TopicProfileLoaded: func(m *Model, ev any) {
			if e, ok := ev.(event.Event[event.ProfileLoaded]); ok {
				m.ProfileID = e.Payload.ProfileID
			}
		},
	}

	for topic, apply := range handlers {
		sub, err := u.host.Bus().Subscribe(topic, func(_ context.Context, ev any) error {
			u.mu.Lock()
			apply(u.model, ev)
			u.mu.Unlock()
			u.term.Wake()
			return nil
		})
		if err != nil {
			u.unsubscribe()
			return err
		}
		u.subs = append(u.subs, sub)
	}
	return nil
}

func (u *UI) unsubscribe() {
	for _, sub := range u.subs {
		_ = u.host.Bus().Unsubscribe(sub)
	}
	u.subs = nil
}
