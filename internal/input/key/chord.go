package key

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins chord parts in the canonical form.
const Separator = " + "

// Parse errors
var (
	ErrEmptyChord        = errors.New("empty chord")
	ErrInvalidChord      = errors.New("invalid chord")
	ErrNoModifier        = errors.New("chord needs at least one modifier")
	ErrTooManyModifiers  = errors.New("chord has too many modifiers")
	ErrDuplicateModifier = errors.New("duplicate modifier in chord")
	ErrNotTerminal       = errors.New("key cannot complete a chord")
)

// punctuation maps OEM punctuation codes to their glyphs.
var punctuation = map[Code]string{
	CodeMinus:        "-",
	CodeEquals:       "=",
	CodeComma:        ",",
	CodePeriod:       ".",
	CodeSlash:        "/",
	CodeSemicolon:    ";",
	CodeQuote:        "'",
	CodeOpenBracket:  "[",
	CodeCloseBracket: "]",
	CodeBackslash:    `\`,
}

// glyphCodes is the inverse of punctuation.
var glyphCodes = func() map[string]Code {
	m := make(map[string]Code, len(punctuation))
	for c, g := range punctuation {
		m[g] = c
	}
	return m
}()

// TokenFor maps a terminal key to its display token.
// Digits render as their glyph, the punctuation table as its character,
// and everything else as the platform key name.
func TokenFor(c Code) string {
	if c.IsDigit() {
		return string(rune('0' + (c - Code0)))
	}
	if g, ok := punctuation[c]; ok {
		return g
	}
	return c.Name()
}

// CodeFor is the inverse of TokenFor.
func CodeFor(token string) (Code, bool) {
	if len(token) == 1 && token[0] >= '0' && token[0] <= '9' {
		return Code0 + Code(token[0]-'0'), true
	}
	if c, ok := glyphCodes[token]; ok {
		return c, true
	}
	if c := CodeFromName(token); c != CodeNone {
		return c, true
	}
	return CodeNone, false
}

// Render produces the canonical text for a modifier set and terminal token.
// The result does not depend on the order the modifiers were discovered in.
// An empty token renders the in-progress prefix, e.g. "CTRL + SHIFT + ".
func Render(mods Modifier, token string) string {
	var b strings.Builder
	for _, mod := range mods.Each() {
		b.WriteString(mod.Token())
		b.WriteString(Separator)
	}
	b.WriteString(token)
	return b.String()
}

// Chord is a modifier set plus one terminal key. The zero value is the
// unbound chord.
type Chord struct {
	Mods Modifier
	Code Code
}

// NewChord creates a chord.
func NewChord(mods Modifier, code Code) Chord {
	return Chord{Mods: mods, Code: code}
}

// IsZero returns true for the unbound chord.
func (c Chord) IsZero() bool {
	return c.Code == CodeNone
}

// Valid returns true if the chord may be persisted and registered:
// a terminal key and between one and MaxModifiers modifiers.
func (c Chord) Valid() bool {
	if c.IsZero() || !Classify(c.Code).IsTerminal() {
		return false
	}
	n := c.Mods.Count()
	return n >= 1 && n <= MaxModifiers
}

// String returns the canonical form, or "" for the unbound chord.
func (c Chord) String() string {
	if c.IsZero() {
		return ""
	}
	return Render(c.Mods, TokenFor(c.Code))
}

// Persisted returns the raw (key code, modifier mask) pair stored next to
// the canonical text so OS registration never has to re-parse it.
func (c Chord) Persisted() (code uint16, mods uint16) {
	if c.IsZero() {
		return 0, 0
	}
	return uint16(c.Code), c.Mods.SystemBits()
}

// FromPersisted rebuilds a chord from its raw pair.
func FromPersisted(code uint16, mods uint16) Chord {
	if code == 0 {
		return Chord{}
	}
	return Chord{Mods: ModifierFromSystemBits(mods), Code: Code(code)}
}

// MarshalText implements encoding.TextMarshaler.
func (c Chord) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Empty text decodes to the unbound chord.
func (c *Chord) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*c = Chord{}
		return nil
	}
	parsed, err := ParseChord(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseChord parses the canonical form ("CTRL + SHIFT + A") back into a
// chord. The compact form "Ctrl+Shift+A" is accepted too; modifier names
// are case-insensitive and may appear in any order.
func ParseChord(s string) (Chord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Chord{}, ErrEmptyChord
	}

	parts := strings.Split(s, "+")
	if len(parts) < 2 {
		return Chord{}, fmt.Errorf("%w: %q", ErrNoModifier, s)
	}

	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		mod := ModifierFromName(p)
		if mod == ModNone {
			return Chord{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidChord, strings.TrimSpace(p))
		}
		if mods.Has(mod) {
			return Chord{}, fmt.Errorf("%w: %s", ErrDuplicateModifier, mod.Token())
		}
		mods = mods.With(mod)
	}
	if mods.Count() > MaxModifiers {
		return Chord{}, fmt.Errorf("%w: %q", ErrTooManyModifiers, s)
	}

	token := strings.TrimSpace(parts[len(parts)-1])
	if token == "" {
		return Chord{}, fmt.Errorf("%w: missing key in %q", ErrInvalidChord, s)
	}
	code, ok := CodeFor(token)
	if !ok {
		return Chord{}, fmt.Errorf("%w: unknown key %q", ErrInvalidChord, token)
	}
	if !Classify(code).IsTerminal() {
		return Chord{}, fmt.Errorf("%w: %q", ErrNotTerminal, token)
	}

	return Chord{Mods: mods, Code: code}, nil
}

// MustParseChord parses a chord and panics on error.
// Use only for known-valid chords in tests and defaults.
func MustParseChord(s string) Chord {
	c, err := ParseChord(s)
	if err != nil {
		panic("invalid chord: " + s + ": " + err.Error())
	}
	return c
}
