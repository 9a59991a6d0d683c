package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationParticipants(t *testing.T) {
	conv := Conversation{ParticipantA: "user-a", ParticipantB: "user-b"}

	assert.True(t, conv.HasParticipant("user-a"))
	assert.True(t, conv.HasParticipant("user-b"))
	assert.False(t, conv.HasParticipant("user-c"))

	assert.Equal(t, "user-b", conv.OtherParticipant("user-a"))
	assert.Equal(t, "user-a", conv.OtherParticipant("user-b"))
}

func TestUnreadCountsDefaultZero(t *testing.T) {
	counts := UnreadCounts{"user-a": 2}

	assert.Equal(t, 2, counts.For("user-a"))
	assert.Equal(t, 0, counts.For("user-b"))
}
