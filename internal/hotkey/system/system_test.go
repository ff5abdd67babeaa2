//go:build darwin || windows

package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/chordboard/internal/input/key"
)

func TestTranslateCoversCommonKeys(t *testing.T) {
	codes := []key.Code{key.CodeMinus, key.CodeSemicolon, key.CodeHome, key.CodeLeft}
	for c := key.CodeA; c <= key.CodeZ; c++ {
		codes = append(codes, c)
	}
	for c := key.Code0; c <= key.Code9; c++ {
		codes = append(codes, c)
	}
	for c := key.CodeF1; c <= key.CodeF12; c++ {
		codes = append(codes, c)
	}

	for _, c := range codes {
		mods, _, err := translate(key.NewChord(key.ModCtrl|key.ModAlt, c))
		require.NoError(t, err, "translate %s", c.Name())
		assert.Len(t, mods, 2)
	}
}

func TestTranslateModifierOrder(t *testing.T) {
	mods, _, err := translate(key.MustParseChord("SHIFT + CTRL + A"))
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, modifierMap[key.ModCtrl], mods[0])
	assert.Equal(t, modifierMap[key.ModShift], mods[1])
}

func TestTranslateUnmappedKey(t *testing.T) {
	_, _, err := translate(key.NewChord(key.ModCtrl, key.Code(0xFF)))
	assert.Error(t, err)
}
