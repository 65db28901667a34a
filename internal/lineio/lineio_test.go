package lineio_test

import (
	"strings"
	"testing"

	"github.com/knitout-go/knitout/internal/lineio"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, r *lineio.Reader) string {
	t.Helper()
	var sb strings.Builder
	for {
		ru, _, err := r.ReadRune()
		if ru != 0 {
			sb.WriteRune(ru)
		}
		if err != nil {
			break
		}
	}
	return sb.String()
}

func TestReader_tracksLines(t *testing.T) {
	r := lineio.NewReader(strings.NewReader("inhook 1\nknit + f1 1\n"))
	out := drain(t, r)
	require.Equal(t, "inhook 1\nknit + f1 1\n", out)
	require.Equal(t, 3, r.Scan.Line, "two completed lines should advance the scan line twice")
}

func TestReadLines(t *testing.T) {
	require.Equal(t, []string{"a", "b", "c"}, lineio.ReadLines("a\nb\nc"))
	require.Equal(t, []string{"a", "b"}, lineio.ReadLines("a\nb\n"))
	require.Nil(t, lineio.ReadLines(""))
}
