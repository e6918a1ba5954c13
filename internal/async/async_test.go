package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAbsent = errors.New("absent")

func TestZipWithCombinesInArgumentOrder(t *testing.T) {
	slow := func(ctx context.Context) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return "first", nil
	}

	got, err := ZipWith(context.Background(), slow, Just("second"), func(a, b string) []string {
		return []string{a, b}
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestZipRunsBranchesConcurrently(t *testing.T) {
	var running atomic.Int32
	release := make(chan struct{})

	branch := func(ctx context.Context) (int, error) {
		if running.Add(1) == 2 {
			close(release)
		}
		select {
		case <-release:
			return 1, nil
		case <-time.After(time.Second):
			return 0, errors.New("branches did not overlap")
		}
	}

	p, err := Zip(context.Background(), branch, branch)

	require.NoError(t, err)
	assert.Equal(t, Pair[int, int]{First: 1, Second: 1}, p)
}

func TestZipShortCircuitsOnError(t *testing.T) {
	combined := false
	cancelled := make(chan struct{})

	failing := func(context.Context) (int, error) {
		return 0, errAbsent
	}
	waiting := func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)
		return 0, ctx.Err()
	}

	_, err := ZipWith(context.Background(), failing, waiting, func(a, b int) int {
		combined = true
		return a + b
	})

	assert.ErrorIs(t, err, errAbsent)
	assert.False(t, combined)
	select {
	case <-cancelled:
	default:
		t.Fatal("sibling branch was not cancelled")
	}
}

func TestDeferNestsJoins(t *testing.T) {
	inner := Defer(Just("a"), Just("b"), func(a, b string) string { return a + b })

	got, err := ZipWith(context.Background(), inner, Just("c"), func(ab, c string) string { return ab + c })

	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestDeferPropagatesInnerError(t *testing.T) {
	inner := Defer(Just(1), func(context.Context) (int, error) { return 0, errAbsent },
		func(a, b int) int { return a + b })

	_, err := ZipWith(context.Background(), inner, Just(2), func(a, b int) int { return a + b })

	assert.ErrorIs(t, err, errAbsent)
}
