package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestJanitorConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultJanitorConfig().Validate())
	assert.ErrorIs(t, JanitorConfig{}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, JanitorConfig{Interval: time.Second, RunTimeout: -1}.Validate(), ErrInvalidConfig)
}

func TestJanitor_RunOnce(t *testing.T) {
	var calls []string
	failing := Task{Name: "failing", Run: func(context.Context) (int, error) {
		calls = append(calls, "failing")
		return 0, errors.New("disk gone")
	}}
	sweep := Task{Name: "sweep", Run: func(ctx context.Context) (int, error) {
		calls = append(calls, "sweep")
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return 3, nil
	}}

	j, err := NewJanitor(DefaultJanitorConfig(), zaptest.NewLogger(t), failing, sweep)
	require.NoError(t, err)

	j.RunOnce(context.Background())
	assert.Equal(t, []string{"failing", "sweep"}, calls)
	assert.Equal(t, 1, j.Runs())
}

func TestJanitor_StartStop(t *testing.T) {
	var n atomic.Int32
	task := Task{Name: "count", Run: func(context.Context) (int, error) {
		n.Add(1)
		return 0, nil
	}}

	j, err := NewJanitor(JanitorConfig{Interval: 10 * time.Millisecond, RunOnStart: true}, zaptest.NewLogger(t), task)
	require.NoError(t, err)

	require.NoError(t, j.Start(context.Background()))
	require.NoError(t, j.Start(context.Background()))
	assert.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, j.Stop(ctx))
	require.NoError(t, j.Stop(ctx))

	after := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, n.Load())
}

func TestJanitor_StartWithoutTasks(t *testing.T) {
	j, err := NewJanitor(DefaultJanitorConfig(), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, j.Start(context.Background()), ErrNoTasks)
}
