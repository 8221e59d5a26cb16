package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to ElectionStatus
		allowed  bool
	}{
		{StatusUpcoming, StatusActive, true},
		{StatusActive, StatusEnded, true},
		{StatusUpcoming, StatusEnded, false}, // no skipping
		{StatusActive, StatusUpcoming, false},
		{StatusEnded, StatusActive, false},
		{StatusEnded, StatusUpcoming, false},
		{StatusUpcoming, StatusUpcoming, false},
		{StatusActive, StatusActive, false},
		{StatusEnded, StatusEnded, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusUpcoming.Valid())
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusEnded.Valid())
	assert.False(t, ElectionStatus("cancelled").Valid())
	assert.False(t, ElectionStatus("").Valid())
}

func TestIsEligible(t *testing.T) {
	election := &Election{
		Roster: []RosterEntry{
			{ElectionID: 1, VoterID: 100},
			{ElectionID: 1, VoterID: 101},
		},
	}
	assert.True(t, election.IsEligible(100))
	assert.True(t, election.IsEligible(101))
	assert.False(t, election.IsEligible(102))

	empty := &Election{}
	assert.False(t, empty.IsEligible(100))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleVoter.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}
