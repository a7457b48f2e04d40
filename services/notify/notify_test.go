package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarkOnce(t *testing.T) {
	ctx := NewContext()

	assert.True(t, ctx.MarkOnce("game-1:alice"))
	assert.False(t, ctx.MarkOnce("game-1:alice"))
	// Other keys are independent
	assert.True(t, ctx.MarkOnce("game-1:bob"))
	assert.True(t, ctx.MarkOnce("game-2:alice"))
}

func TestShouldShowRespectsCooldown(t *testing.T) {
	ctx := NewContext()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, ctx.ShouldShow("turn:alice", now, 10*time.Second))
	assert.False(t, ctx.ShouldShow("turn:alice", now.Add(5*time.Second), 10*time.Second))
	assert.True(t, ctx.ShouldShow("turn:alice", now.Add(11*time.Second), 10*time.Second))
}

func TestVisibleTracking(t *testing.T) {
	ctx := NewContext()

	ctx.SetVisible("invite:room-1")
	assert.Equal(t, "invite:room-1", ctx.Visible())

	// Clearing with a stale key leaves the current one alone
	ctx.ClearVisible("invite:room-2")
	assert.Equal(t, "invite:room-1", ctx.Visible())

	ctx.ClearVisible("invite:room-1")
	assert.Equal(t, "", ctx.Visible())
}

func TestSeparateContextsDoNotShareState(t *testing.T) {
	a := NewContext()
	b := NewContext()

	assert.True(t, a.MarkOnce("game-1"))
	assert.True(t, b.MarkOnce("game-1"))
}
