package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_AllSucceed(t *testing.T) {
	var attempted []string
	res := Run(context.Background(), []string{"a", "b", "c"}, func(ctx context.Context, id string) error {
		attempted = append(attempted, id)
		return nil
	})
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, []string{"a", "b", "c"}, attempted, "order preserved")
}

func TestRun_PartialFailureContinues(t *testing.T) {
	boom := errors.New("boom")
	var attempted []string
	res := Run(context.Background(), []string{"a", "b", "c", "d"}, func(ctx context.Context, id string) error {
		attempted = append(attempted, id)
		if id == "b" || id == "d" {
			return boom
		}
		return nil
	})
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, attempted, 4, "all items attempted despite failures")
	assert.ErrorIs(t, res.Errors["b"], boom)
	assert.ErrorIs(t, res.Errors["d"], boom)
}

func TestRun_StrictlySequential(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	ids := []string{"1", "2", "3", "4", "5"}

	res := Run(context.Background(), ids, func(ctx context.Context, id string) error {
		cur := inFlight.Add(1)
		if cur > maxInFlight.Load() {
			maxInFlight.Store(cur)
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return nil
	})

	require.Equal(t, len(ids), res.Succeeded)
	assert.Equal(t, int32(1), maxInFlight.Load(), "no two requests in flight simultaneously")
}

func TestRun_CountsProperty(t *testing.T) {
	// N ids with K induced failures yields {succeeded: N-K, failed: K}.
	tests := []struct {
		name string
		n, k int
	}{
		{"no failures", 5, 0},
		{"some failures", 7, 3},
		{"all fail", 4, 4},
		{"empty", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]string, tt.n)
			for i := range ids {
				ids[i] = string(rune('a' + i))
			}
			failed := 0
			res := Run(context.Background(), ids, func(ctx context.Context, id string) error {
				if failed < tt.k {
					failed++
					return errors.New("induced")
				}
				return nil
			})
			assert.Equal(t, tt.n-tt.k, res.Succeeded)
			assert.Equal(t, tt.k, res.Failed)
		})
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var attempted int
	res := Run(ctx, []string{"a", "b", "c"}, func(ctx context.Context, id string) error {
		attempted++
		if id == "a" {
			cancel()
		}
		return nil
	})
	assert.Equal(t, 1, attempted, "cancellation stops further requests")
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 2, res.Failed, "untouched items counted as failed")
}
