package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxLabelLength bounds labels derived from payload file names.
const MaxLabelLength = 24

// payloadExtensions are the audio formats the action layer can play.
var payloadExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".aac": true,
	".wma": true,
	".m4a": true,
}

// ValidPayload returns true if path has a supported extension.
func ValidPayload(path string) bool {
	return payloadExtensions[strings.ToLower(filepath.Ext(path))]
}

// LabelFromPath derives a slot label from a payload file name: the base
// name without extension, cut to MaxLabelLength runes.
func LabelFromPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if utf8.RuneCountInString(name) <= MaxLabelLength {
		return name
	}
	return string([]rune(name)[:MaxLabelLength])
}

// SetLabel renames a slot.
func (e *Engine) SetLabel(ctx context.Context, ordinal int, label string) error {
	if e.store == nil {
		return ErrNoProfile
	}
	if err := e.store.SetLabel(ordinal, strings.TrimSpace(label)); err != nil {
		return err
	}
	return e.save(ctx, ordinal)
}

// SetPayload points a slot at a payload file and labels the slot after it.
func (e *Engine) SetPayload(ctx context.Context, ordinal int, path string) error {
	if e.store == nil {
		return ErrNoProfile
	}
	if !ValidPayload(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedPayload, filepath.Ext(path))
	}
	if err := e.store.SetPayload(ordinal, path); err != nil {
		return err
	}
	if err := e.store.SetLabel(ordinal, LabelFromPath(path)); err != nil {
		return err
	}
	return e.save(ctx, ordinal)
}

// ClearSlot wipes a slot's label and payload. Its chord stays bound.
func (e *Engine) ClearSlot(ctx context.Context, ordinal int) error {
	if e.store == nil {
		return ErrNoProfile
	}
	if err := e.store.Clear(ordinal); err != nil {
		return err
	}
	return e.save(ctx, ordinal)
}

// ClearAll wipes every label and payload of the profile.
func (e *Engine) ClearAll(ctx context.Context) error {
	if e.store == nil {
		return ErrNoProfile
	}
	e.store.ClearAll()

	slots := e.store.Slots()
	if err := e.repo.SaveSlots(ctx, e.store.ProfileID(), slots); err != nil {
		ords := make([]int, len(slots))
		for i, s := range slots {
			ords[i] = s.Ordinal
		}
		return &PersistenceError{Op: "clear", Slots: ords, Err: err}
	}
	e.publishSlots(ctx)
	return nil
}
