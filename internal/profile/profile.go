// Package profile moves a profile's slots in and out of YAML documents.
package profile

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dshills/chordboard/internal/input/key"
	"github.com/dshills/chordboard/internal/slot"
)

// Version is the document format version written by Encode.
const Version = 1

var (
	// ErrUnsupportedVersion indicates a document from a newer format.
	ErrUnsupportedVersion = errors.New("unsupported profile document version")

	// ErrSlotOutOfRange indicates a document slot the target profile lacks.
	ErrSlotOutOfRange = errors.New("slot out of range")
)

// Document is the exported form of a profile.
type Document struct {
	Version int    `yaml:"version"`
	Name    string `yaml:"name"`
	Slots   []Slot `yaml:"slots"`
}

// Slot is one exported slot. Empty fields are omitted.
type Slot struct {
	Ordinal int       `yaml:"ordinal"`
	Chord   key.Chord `yaml:"chord,omitempty"`
	Label   string    `yaml:"label,omitempty"`
	Payload string    `yaml:"payload,omitempty"`
}

// NewDocument builds a document from a profile's slots. Empty slots are
// left out.
func NewDocument(name string, slots []slot.Slot) *Document {
	doc := &Document{Version: Version, Name: name}
	for _, s := range slots {
		if s.IsEmpty() {
			continue
		}
		doc.Slots = append(doc.Slots, Slot{
			Ordinal: s.Ordinal,
			Chord:   s.Chord,
			Label:   s.Label,
			Payload: s.Payload,
		})
	}
	return doc
}

// Encode writes the document as YAML.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	return enc.Close()
}

// Decode reads a YAML document. Chords are parsed and validated.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	if doc.Version < 1 || doc.Version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	for _, s := range doc.Slots {
		if !s.Chord.IsZero() && !s.Chord.Valid() {
			return nil, fmt.Errorf("slot %d: %w: %q", s.Ordinal, key.ErrInvalidChord, s.Chord)
		}
	}
	return &doc, nil
}

// Apply overlays the document onto a profile's current slots and returns
// the result. Slots the document doesn't mention are cleared. The result
// must hold every chord at most once.
func (d *Document) Apply(profileID int64, current []slot.Slot) ([]slot.Slot, error) {
	out := slot.New(len(current))
	for _, s := range d.Slots {
		if s.Ordinal < 1 || s.Ordinal > len(out) {
			return nil, fmt.Errorf("%w: %d (profile has %d)", ErrSlotOutOfRange, s.Ordinal, len(out))
		}
		out[s.Ordinal-1] = slot.Slot{
			Ordinal: s.Ordinal,
			Chord:   s.Chord,
			Label:   s.Label,
			Payload: s.Payload,
		}
	}

	store, err := slot.NewStore(profileID, out)
	if err != nil {
		return nil, err
	}
	if err := store.Check(); err != nil {
		return nil, err
	}
	return store.Slots(), nil
}
