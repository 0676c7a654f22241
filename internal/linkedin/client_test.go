package linkedin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitWakesOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	wait(ctx, 30*time.Second)
	assert.Less(t, time.Since(start), time.Second, "cancelled wait must not block")
}

func TestWaitRunsFullDurationOtherwise(t *testing.T) {
	start := time.Now()
	wait(context.Background(), 20*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
