package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowSkeleton(t *testing.T) {
	tests := []struct {
		name     string
		settled  bool
		inFlight bool
		size     int
		want     bool
	}{
		{"before first load", false, false, 0, true},
		{"first load running", false, true, 0, true},
		{"settled empty", true, false, 0, false},
		{"settled after failure", true, false, 0, false},
		{"reload over empty", true, true, 0, true},
		{"reload over data", true, true, 3, false},
		{"settled with data", true, false, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShowSkeleton(tt.settled, tt.inFlight, tt.size))
		})
	}
}

func TestIsPrivileged(t *testing.T) {
	assert.True(t, IsPrivileged([]string{"reporter", "Admin"}))
	assert.True(t, IsPrivileged([]string{" ADMIN "}))
	assert.False(t, IsPrivileged([]string{"reporter"}))
	assert.False(t, IsPrivileged([]string{"administrator"}))
	assert.False(t, IsPrivileged(nil))
}

func TestGeneration(t *testing.T) {
	var g Generation
	first := g.Next()
	assert.True(t, g.IsCurrent(first))

	second := g.Next()
	assert.Greater(t, second, first)
	assert.False(t, g.IsCurrent(first))
	assert.True(t, g.IsCurrent(second))
}

func TestGeneration_Concurrent(t *testing.T) {
	var g Generation
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Next()
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(50), g.Current())
}

func TestFlow(t *testing.T) {
	var f Flow
	assert.Equal(t, PhaseIdle, f.Phase())

	assert.NoError(t, f.Confirm())
	assert.Equal(t, PhaseConfirming, f.Phase())
	assert.ErrorIs(t, f.Confirm(), ErrBusy)

	f.Decline()
	assert.Equal(t, PhaseIdle, f.Phase())

	assert.NoError(t, f.Confirm())
	f.Proceed()
	assert.Equal(t, PhaseMutating, f.Phase())
	assert.ErrorIs(t, f.Confirm(), ErrBusy)
	f.Settle()
	assert.Equal(t, PhaseSettled, f.Phase())
	assert.Equal(t, "settled", f.Phase().String())
}

func TestFlow_OverlappingMutations(t *testing.T) {
	var f Flow
	f.Mutate()
	f.Mutate()
	f.Settle()
	assert.Equal(t, PhaseMutating, f.Phase())
	f.Settle()
	assert.Equal(t, PhaseSettled, f.Phase())
}

func TestFlow_MutationWhileConfirming(t *testing.T) {
	var f Flow
	require.NoError(t, f.Confirm())

	f.Mutate()
	assert.Equal(t, PhaseMutating, f.Phase())
	f.Settle()
	assert.Equal(t, PhaseConfirming, f.Phase(), "the delete is still waiting for an answer")
	assert.ErrorIs(t, f.Confirm(), ErrBusy)

	f.Decline()
	assert.Equal(t, PhaseSettled, f.Phase())
	assert.NoError(t, f.Confirm())
}

func TestFlow_DeclineWhileMutating(t *testing.T) {
	var f Flow
	require.NoError(t, f.Confirm())
	f.Mutate()
	f.Decline()
	assert.Equal(t, PhaseMutating, f.Phase())
	f.Settle()
	assert.Equal(t, PhaseSettled, f.Phase())

	f.Reset()
	assert.Equal(t, PhaseIdle, f.Phase())
}
