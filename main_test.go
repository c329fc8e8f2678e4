package main

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/carlosmiguelsoto/einstein/pkg/einstein"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelError, parseLevel("ERROR"))
	assert.Equal(t, slog.LevelWarn, parseLevel("loud"))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Upload cancelled: a newer upload was started.",
		errorMessage(fmt.Errorf("upload: %w", einstein.ErrSuperseded)))
	assert.Equal(t, "boom", errorMessage(errors.New("boom")))
}

func TestRunUsage(t *testing.T) {
	assert.Equal(t, 2, run(nil))
	assert.Equal(t, 2, run([]string{"-nosuchflag"}))
}
