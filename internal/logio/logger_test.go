package logio_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/knitout-go/knitout/internal/logio"
	"github.com/stretchr/testify/require"
)

type nopWriteCloser struct{ *bytes.Buffer }

func (nopWriteCloser) Close() error { return nil }

func TestLogger_PrintfAndExitCode(t *testing.T) {
	var buf bytes.Buffer
	var log logio.Logger
	log.SetOutput(nopWriteCloser{&buf})

	log.Printf("TRACE", "closing pass at %v", 12)
	require.Equal(t, "TRACE: closing pass at 12\n", buf.String())
	require.Equal(t, 0, log.ExitCode())

	log.Errorf("bad rack %v", 3)
	require.Contains(t, buf.String(), "ERROR: bad rack 3")
	require.Equal(t, 1, log.ExitCode())
}

func TestLogger_ErrorIf(t *testing.T) {
	var buf bytes.Buffer
	var log logio.Logger
	log.SetOutput(nopWriteCloser{&buf})

	log.ErrorIf(nil)
	require.Equal(t, 0, log.ExitCode())

	log.ErrorIf(errors.New("snapshot missing"))
	require.Equal(t, 2, log.ExitCode())
}
