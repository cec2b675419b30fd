package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanBytes(t *testing.T) {
	assert.Equal(t, "512 B", HumanBytes(512))
	assert.Equal(t, "1.0 KiB", HumanBytes(1024))
	assert.Equal(t, "1.5 MiB", HumanBytes(1536*1024))
	assert.Equal(t, "2.0 GiB", HumanBytes(2*1024*1024*1024))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m 42s", FormatDuration(42*time.Second))
	assert.Equal(t, "3h 5m 0s", FormatDuration(3*time.Hour+5*time.Minute))
	assert.Equal(t, "2d 1h 30m", FormatDuration(49*time.Hour+30*time.Minute))
}
