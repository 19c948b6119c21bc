package cronmanager

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJobs(t *testing.T) {
	cm := NewCronManager(JobRegistry{
		"stats":  {Func: func() {}, Schedule: "@every 1m"},
		"broken": {Func: func() {}, Schedule: "every tuesday"},
	})

	err := cm.LoadJobs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `job "broken"`)
	assert.Equal(t, []string{"stats"}, cm.Jobs())

	require.Error(t, cm.LoadJobs())
	assert.Len(t, cm.Jobs(), 1)

	cm.RemoveJob("stats")
	assert.Empty(t, cm.Jobs())
	assert.True(t, cm.Next("stats").IsZero())
}

func TestRunAndStop(t *testing.T) {
	done := make(chan struct{}, 1)
	cm := NewCronManager(JobRegistry{
		"panics": {Func: func() { panic("boom") }, Schedule: "@every 1s"},
		"tick": {Func: func() {
			select {
			case done <- struct{}{}:
			default:
			}
		}, Schedule: "@every 1s"},
	})
	require.NoError(t, cm.LoadJobs())
	cm.Start()
	defer cm.Stop()

	assert.False(t, cm.Next("tick").IsZero())
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
