package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviesalon/backend/internal/constants"
)

func TestNewConversation_Validation(t *testing.T) {
	tests := []struct {
		name         string
		topic        string
		participants []string
		wantErr      bool
	}{
		{name: "valid", topic: "映画", participants: []string{"Mod", "X"}},
		{name: "host only", topic: "映画", participants: []string{"Mod"}},
		{name: "empty topic", topic: " ", participants: []string{"Mod"}, wantErr: true},
		{name: "no participants", topic: "映画", participants: nil, wantErr: true},
		{name: "duplicate", topic: "映画", participants: []string{"Mod", "X", "X"}, wantErr: true},
		{name: "blank name", topic: "映画", participants: []string{"Mod", ""}, wantErr: true},
		{name: "sentinel name", topic: "映画", participants: []string{"Mod", constants.SpeakerUndetermined}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewConversation(tt.topic, "", nil, "", tt.participants, nil)
			if tt.wantErr {
				require.Error(t, err)
				var invalid ErrInvalidConversation
				assert.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, c.TurnCount)
			assert.Empty(t, c.Summaries)
			assert.False(t, c.AwaitingSummary)
			assert.Equal(t, KindMessage, c.Kind)
		})
	}
}

func TestConversation_HostAndGuests(t *testing.T) {
	c, err := NewConversation("映画", "", nil, "", []string{"Mod", "X", "Y"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Mod", c.Host())
	assert.Equal(t, []string{"X", "Y"}, c.Guests())
	assert.True(t, c.IsGuest("X"))
	assert.False(t, c.IsGuest("Mod"))
	assert.False(t, c.IsGuest("Z"))

	guests := c.Guests()
	guests[0] = "mutated"
	assert.Equal(t, "X", c.Participants[1])
}

func TestConversation_InputsAreCopied(t *testing.T) {
	genres := []string{"SF"}
	names := []string{"Mod", "X"}
	c, err := NewConversation("映画", "", genres, "", names, nil)
	require.NoError(t, err)

	genres[0] = "ホラー"
	names[1] = "Y"
	assert.Equal(t, []string{"SF"}, c.Genres)
	assert.Equal(t, []string{"Mod", "X"}, c.Participants)
}

func TestConversation_RenderSummaries(t *testing.T) {
	c, err := NewConversation("映画", "", nil, "", []string{"Mod", "X"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "", c.RenderSummaries())

	c.AppendSummary("Mod", "はじめに")
	c.AppendSummary("X", "SFが好き")
	assert.Equal(t, "Mod：はじめに\nX：SFが好き", c.RenderSummaries())
	assert.Len(t, c.Summaries, 2)
}

func TestConversation_ProfileFallback(t *testing.T) {
	profiles := map[string]Profile{"Mod": {Gender: "男性", Age: "30"}}
	c, err := NewConversation("映画", "", nil, "", []string{"Mod", "X"}, profiles)
	require.NoError(t, err)

	assert.Equal(t, "男性", c.Profile("Mod").Gender)
	assert.True(t, c.Profile("X").IsEmpty())
}

func TestConversation_Terminated(t *testing.T) {
	c, err := NewConversation("映画", "", nil, "", []string{"Mod"}, nil)
	require.NoError(t, err)
	assert.False(t, c.Terminated())

	c.NextSpeaker = constants.SpeakerUndetermined
	assert.False(t, c.Terminated())

	c.NextSpeaker = constants.SpeakerNone
	assert.True(t, c.Terminated())
}
