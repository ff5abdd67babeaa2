package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/dshills/chordboard/internal/event"
)

// subscribe attaches the application's own listeners to the bus.
func (app *Application) subscribe() error {
	log := WithComponent(app.log, "app")
	handlers := map[event.Topic]event.HandlerFunc{
		event.TopicBindingFired: func(ctx context.Context, ev any) error {
			e, ok := ev.(event.Event[event.BindingFired])
			if !ok {
				return nil
			}
			log.WithFields(logrus.Fields{
				"slot":    e.Payload.Slot,
				"chord":   e.Payload.Chord.String(),
				"label":   e.Payload.Label,
				"payload": e.Payload.Payload,
			}).Info("hotkey pressed")
			if app.actions == nil {
				return nil
			}
			if err := app.actions.Fire(ctx, e.Payload); err != nil {
				app.metrics.RecordActionError()
				return err
			}
			return nil
		},
		event.TopicRegistrationConflict: func(_ context.Context, ev any) error {
			if e, ok := ev.(event.Event[event.RegistrationConflict]); ok {
				log.WithFields(logrus.Fields{
					"slot":  e.Payload.Slot,
					"chord": e.Payload.Chord.String(),
				}).Warnf("chord unavailable: %s", e.Payload.Reason)
			}
			return nil
		},
		event.TopicInvariantViolation: func(_ context.Context, ev any) error {
			if e, ok := ev.(event.Event[event.InvariantViolation]); ok {
				log.WithFields(logrus.Fields{
					"chord": e.Payload.Chord.String(),
					"slots": e.Payload.Slots,
				}).Error("chord held by more than one slot")
			}
			return nil
		},
	}

	for topic, fn := range handlers {
		sub, err := app.bus.Subscribe(topic, fn)
		if err != nil {
			return err
		}
		app.subs = append(app.subs, sub)
	}
	return nil
}
