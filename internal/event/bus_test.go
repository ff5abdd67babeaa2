package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"chord.finalized", "chord.finalized", true},
		{"chord.finalized", "chord.*", true},
		{"chord.finalized", "*", false},
		{"chord.finalized", "**", true},
		{"registration.conflict", "registration.**", true},
		{"registration.conflict", "*.conflict", true},
		{"registration.conflict", "slots.*", false},
		{"a.b.c", "a.**.c", true},
		{"a.c", "a.**.c", true},
		{"a.b", "a.b.c", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.topic.Matches(tt.pattern), "%s ~ %s", tt.topic, tt.pattern)
	}
}

func TestTopicValid(t *testing.T) {
	assert.True(t, TopicChordFinalized.Valid())
	assert.False(t, Topic("").Valid())
	assert.False(t, Topic("a..b").Valid())
	assert.False(t, Topic(".a").Valid())
}

func TestPublishDeliversToMatching(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var got []Topic
	_, err := bus.Subscribe("registration.*", func(_ context.Context, ev any) error {
		got = append(got, ev.(TopicProvider).EventTopic())
		return nil
	})
	require.NoError(t, err)

	var fired []BindingFired
	_, err = bus.Subscribe(TopicBindingFired, func(_ context.Context, ev any) error {
		fired = append(fired, ev.(Event[BindingFired]).Payload)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, NewEvent(TopicRegistrationConflict, RegistrationConflict{Slot: 1}, "test")))
	require.NoError(t, bus.Publish(ctx, NewEvent(TopicBindingFired, BindingFired{Slot: 2, Label: "horn"}, "test")))
	require.NoError(t, bus.Publish(ctx, NewEvent(TopicSlotsChanged, SlotsChanged{}, "test")))

	assert.Equal(t, []Topic{TopicRegistrationConflict}, got)
	require.Len(t, fired, 1)
	assert.Equal(t, "horn", fired[0].Label)

	stats := bus.Stats()
	assert.Equal(t, uint64(3), stats.EventsPublished)
	assert.Equal(t, uint64(2), stats.HandlersExecuted)
	assert.Equal(t, 2, stats.ActiveSubscribers)
}

func TestPublishRejectsInvalid(t *testing.T) {
	bus := NewBus()
	assert.ErrorIs(t, bus.Publish(context.Background(), "not an event"), ErrInvalidEvent)
	assert.ErrorIs(t, bus.Publish(context.Background(), NewEvent[int]("", 1, "")), ErrInvalidEvent)
}

func TestSubscribeValidation(t *testing.T) {
	bus := NewBus()
	_, err := bus.Subscribe("a", nil)
	assert.ErrorIs(t, err, ErrNilHandler)

	_, err = bus.Subscribe("", func(context.Context, any) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidTopic)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	sub, err := bus.Subscribe("**", func(context.Context, any) error {
		calls++
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), NewEvent(TopicHotkeysToggled, HotkeysToggled{}, "")))
	require.NoError(t, bus.Unsubscribe(sub))
	require.NoError(t, bus.Publish(context.Background(), NewEvent(TopicHotkeysToggled, HotkeysToggled{}, "")))

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, bus.Unsubscribe(sub), ErrSubscriptionNotFound)
}

func TestHandlerErrorsAndPanicsAreContained(t *testing.T) {
	var panics []*PanicError
	var errs []error
	bus := NewBus(
		WithPanicHandler(func(p *PanicError) { panics = append(panics, p) }),
		WithErrorHandler(func(_ Subscription, err error) { errs = append(errs, err) }),
	)

	boom := errors.New("boom")
	_, _ = bus.Subscribe("**", func(context.Context, any) error { panic("kaboom") })
	_, _ = bus.Subscribe("**", func(context.Context, any) error { return boom })
	reached := false
	_, _ = bus.Subscribe("**", func(context.Context, any) error {
		reached = true
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), NewEvent(TopicSlotsChanged, SlotsChanged{}, "")))

	assert.True(t, reached)
	require.Len(t, panics, 1)
	assert.ErrorIs(t, panics[0], ErrHandlerPanic)
	assert.Equal(t, TopicSlotsChanged, panics[0].Topic)
	assert.Equal(t, []error{boom}, errs)

	stats := bus.Stats()
	assert.Equal(t, uint64(1), stats.HandlerPanics)
	assert.Equal(t, uint64(1), stats.HandlerErrors)
}

func TestNewEventMetadata(t *testing.T) {
	ev := NewEvent(TopicProfileLoaded, ProfileLoaded{ProfileID: 4}, "engine")
	assert.NotEmpty(t, ev.Metadata.ID)
	assert.False(t, ev.Metadata.Timestamp.IsZero())
	assert.Equal(t, "engine", ev.Metadata.Source)
	assert.Equal(t, TopicProfileLoaded, ev.EventTopic())
}
