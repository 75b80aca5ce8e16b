package subtitles

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indra622/world-of-asr/pkg/apierr"
)

func TestFormatTimestamp_OmitsHoursByDefault(t *testing.T) {
	out, err := FormatTimestamp(2.5, false, ".")
	require.NoError(t, err)
	assert.Equal(t, "00:02.500", out)
}

func TestFormatTimestamp_IncludesHoursWhenNonZero(t *testing.T) {
	out, err := FormatTimestamp(3601.5, false, ",")
	require.NoError(t, err)
	assert.Equal(t, "01:00:01,500", out)
}

func TestFormatTimestamp_AlwaysIncludeHours(t *testing.T) {
	out, err := FormatTimestamp(1.0, true, ",")
	require.NoError(t, err)
	assert.Equal(t, "00:00:01,000", out)
}

func TestFormatTimestamp_ZeroAccepted(t *testing.T) {
	out, err := FormatTimestamp(0, false, ".")
	require.NoError(t, err)
	assert.Equal(t, "00:00.000", out)
}

func TestFormatTimestamp_NegativeRejected(t *testing.T) {
	_, err := FormatTimestamp(-0.1, false, ".")
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.FormatWriteError))
}

func TestFormatTimestamp_Roundtrip(t *testing.T) {
	for _, seconds := range []float64{0, 0.001, 1.2345, 59.999, 3599.999, 3600.0, 7325.678} {
		out, err := FormatTimestamp(seconds, true, ".")
		require.NoError(t, err)

		var h, m, s, ms int64
		_, scanErr := fmt.Sscanf(out, "%02d:%02d:%02d.%03d", &h, &m, &s, &ms)
		require.NoError(t, scanErr)

		parsed := float64(h*3600+m*60+s) + float64(ms)/1000.0
		expected := float64(int64(seconds*1000+0.5)) / 1000.0
		assert.InDelta(t, expected, parsed, 0.0005)
	}
}
