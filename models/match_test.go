package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParentOrder(t *testing.T) {
	cases := map[int]int{
		1: 1, 2: 1,
		3: 2, 4: 2,
		5: 3, 6: 3,
		7: 4, 8: 4,
		15: 8, 16: 8,
	}
	for order, want := range cases {
		assert.Equal(t, want, ParentOrder(order), "order %d", order)
	}
}

func TestParentSlot(t *testing.T) {
	assert.Equal(t, SlotAthlete1, ParentSlot(1))
	assert.Equal(t, SlotAthlete2, ParentSlot(2))
	assert.Equal(t, SlotAthlete1, ParentSlot(3))
	assert.Equal(t, SlotAthlete2, ParentSlot(4))
	assert.Equal(t, SlotAthlete1, ParentSlot(7))
}

func TestMatchStatusIsTerminal(t *testing.T) {
	assert.False(t, MatchStatusPending.IsTerminal())
	assert.False(t, MatchStatusInProgress.IsTerminal())
	assert.True(t, MatchStatusCompleted.IsTerminal())
	assert.True(t, MatchStatusBye.IsTerminal())
}
