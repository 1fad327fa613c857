// ABOUTME: Tests for entry-point plumbing
// ABOUTME: Update delivery must shed old progress, never the newest snapshot
package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivinha/console/execution"
)

func TestEnqueueUpdateKeepsNewestOnOverflow(t *testing.T) {
	updates := make(chan execution.State, 2)

	enqueueUpdate(updates, execution.State{Phase: execution.PhasePolling, ExecutionID: "a"})
	enqueueUpdate(updates, execution.State{Phase: execution.PhasePolling, ExecutionID: "b"})
	enqueueUpdate(updates, execution.State{Phase: execution.PhaseCompleted, ExecutionID: "c"})

	var received []execution.State
	for len(updates) > 0 {
		received = append(received, <-updates)
	}

	require.Len(t, received, 2)
	last := received[len(received)-1]
	assert.Equal(t, execution.PhaseCompleted, last.Phase, "the terminal snapshot is never shed")
	assert.Equal(t, "c", last.ExecutionID)
}

func TestEnqueueUpdateNormalDelivery(t *testing.T) {
	updates := make(chan execution.State, 4)

	enqueueUpdate(updates, execution.State{Phase: execution.PhasePolling})
	assert.Len(t, updates, 1)
}

func TestResolvePrecedence(t *testing.T) {
	t.Setenv("CONSOLE_TEST_URL", "http://from-env")

	assert.Equal(t, "http://from-flag", resolve("http://from-flag", "CONSOLE_TEST_URL", "http://fallback"))
	assert.Equal(t, "http://from-env", resolve("", "CONSOLE_TEST_URL", "http://fallback"))
	assert.Equal(t, "http://fallback", resolve("", "CONSOLE_TEST_UNSET", "http://fallback"))
}
