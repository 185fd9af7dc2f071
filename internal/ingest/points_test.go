package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePoints(t *testing.T) {
	t.Parallel()

	t.Run("skips header and trims ids", func(t *testing.T) {
		t.Parallel()

		points, err := ParsePoints([]byte("reg_id,points\nTSPL08260001,42\n  TSPL08260002 , 7\n"))
		require.NoError(t, err)
		assert.Equal(t, map[string]int{
			"TSPL08260001": 42,
			"TSPL08260002": 7,
		}, points)
	})

	t.Run("empty input yields empty map", func(t *testing.T) {
		t.Parallel()

		points, err := ParsePoints([]byte(""))
		require.NoError(t, err)
		assert.Empty(t, points)
	})

	t.Run("non-integer points fails the whole parse", func(t *testing.T) {
		t.Parallel()

		_, err := ParsePoints([]byte("reg_id,points\nTSPL08260001,42\nTSPL08260002,abc\n"))
		assert.Error(t, err)
	})

	t.Run("short row fails the whole parse", func(t *testing.T) {
		t.Parallel()

		_, err := ParsePoints([]byte("reg_id,points\nTSPL08260001\n"))
		assert.Error(t, err)
	})
}
