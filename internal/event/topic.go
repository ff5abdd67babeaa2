package event

import "strings"

// Topic names an event type in dot notation, e.g. "chord.finalized".
type Topic string

// Wildcards usable in subscription patterns.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"
)

// Topics published by the engine.
const (
	TopicChordFinalized       Topic = "chord.finalized"
	TopicCaptureChanged       Topic = "capture.changed"
	TopicBindingFired         Topic = "binding.fired"
	TopicRegistrationConflict Topic = "registration.conflict"
	TopicInvariantViolation   Topic = "registration.invariant"
	TopicSlotsChanged         Topic = "slots.changed"
	TopicHotkeysToggled       Topic = "hotkeys.toggled"
	TopicProfileLoaded        Topic = "profile.loaded"
)

// String returns the topic as a string.
func (t Topic) String() string { return string(t) }

// Valid returns true for non-empty topics without empty segments.
func (t Topic) Valid() bool {
	if t == "" {
		return false
	}
	for _, seg := range strings.Split(string(t), ".") {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches returns true if the topic matches a pattern that may contain
// wildcards.
func (t Topic) Matches(pattern Topic) bool {
	return matchSegments(strings.Split(string(t), "."), strings.Split(string(pattern), "."))
}

func matchSegments(topic, pattern []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == WildcardMulti {
			for i := 0; i <= len(topic); i++ {
				if matchSegments(topic[i:], pattern[1:]) {
					return true
				}
			}
			return false
		}
		if len(topic) == 0 {
			return false
		}
		if pattern[0] != WildcardSingle && pattern[0] != topic[0] {
			return false
		}
		topic, pattern = topic[1:], pattern[1:]
	}
	return len(topic) == 0
}
