package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitError(t *testing.T) {
	cause := errors.New("disk full")
	err := &InitError{Component: "storage", Err: cause}

	assert.Equal(t, "init storage: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestRecoveredPanicError(t *testing.T) {
	assert.Equal(t, "panic: oops", (&RecoveredPanicError{Value: "oops"}).Error())
	assert.Contains(t, (&RecoveredPanicError{Value: 1, Stack: "goroutine 1"}).Error(), "goroutine 1")
}
