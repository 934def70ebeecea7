package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"*/5 * * * *", false},
		{"0 2 * * *", false},
		{"30 4 1 * 5", false},
		{"", true},
		{"not a cron", true},
		{"* * * * * *", true}, // 6 fields: seconds not accepted
		{"61 * * * *", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			err := Validate(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNext(t *testing.T) {
	from := time.Date(2025, 6, 1, 10, 0, 30, 0, time.UTC)
	got := Next("*/15 * * * *", from)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 15, 0, 0, time.UTC), got)

	assert.True(t, Next("garbage", from).IsZero())
}

func TestPreview(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	times := Preview("0 * * * *", from, 3)
	require.Len(t, times, 3)
	assert.Equal(t, time.Date(2025, 6, 1, 1, 0, 0, 0, time.UTC), times[0])
	assert.Equal(t, time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC), times[1])
	assert.Equal(t, time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC), times[2])

	assert.Nil(t, Preview("garbage", from, 3))
}
