package util

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestEnableDebugLogging(t *testing.T) {
	previous := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(previous) })

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	EnableDebugLogging()
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %s", zerolog.GlobalLevel())
	}

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	EnableDebugLogging()
	if zerolog.GlobalLevel() != zerolog.TraceLevel {
		t.Errorf("expected trace level to be kept, got %s", zerolog.GlobalLevel())
	}
}
