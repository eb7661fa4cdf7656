package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateOf(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"utc afternoon", time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"already midnight", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"late evening west of utc", time.Date(2026, 3, 10, 22, 0, 0, 0, saoPaulo), time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(DateOf(tt.in)), "got %s", DateOf(tt.in))
			assert.Equal(t, time.UTC, DateOf(tt.in).Location())
		})
	}
}

func TestFixedToday(t *testing.T) {
	c := Fixed{At: time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)}

	assert.Equal(t, c.At, c.Now())
	assert.Equal(t, time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), Today(c))
}
