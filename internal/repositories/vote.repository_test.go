package repositories_test

import (
	"testing"

	"qrate/internal/models"
	"qrate/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func TestApplyVoteTransition(t *testing.T) {
	upvote := models.VoteUp
	downvote := models.VoteDown

	tests := []struct {
		name        string
		existing    *models.VoteType
		incoming    models.VoteType
		tally       repositories.VoteTally
		want        repositories.VoteTally
		wantChanged bool
	}{
		{
			name:        "first upvote",
			existing:    nil,
			incoming:    models.VoteUp,
			tally:       repositories.VoteTally{},
			want:        repositories.VoteTally{Up: 1},
			wantChanged: true,
		},
		{
			name:        "first downvote",
			existing:    nil,
			incoming:    models.VoteDown,
			tally:       repositories.VoteTally{Up: 2},
			want:        repositories.VoteTally{Up: 2, Down: 1},
			wantChanged: true,
		},
		{
			name:        "repeated upvote is a no-op",
			existing:    &upvote,
			incoming:    models.VoteUp,
			tally:       repositories.VoteTally{Up: 3, Down: 1},
			want:        repositories.VoteTally{Up: 3, Down: 1},
			wantChanged: false,
		},
		{
			name:        "repeated downvote is a no-op",
			existing:    &downvote,
			incoming:    models.VoteDown,
			tally:       repositories.VoteTally{Up: 1, Down: 2},
			want:        repositories.VoteTally{Up: 1, Down: 2},
			wantChanged: false,
		},
		{
			name:        "switch from upvote to downvote",
			existing:    &upvote,
			incoming:    models.VoteDown,
			tally:       repositories.VoteTally{Up: 1},
			want:        repositories.VoteTally{Up: 0, Down: 1},
			wantChanged: true,
		},
		{
			name:        "switch from downvote to upvote",
			existing:    &downvote,
			incoming:    models.VoteUp,
			tally:       repositories.VoteTally{Up: 4, Down: 2},
			want:        repositories.VoteTally{Up: 5, Down: 1},
			wantChanged: true,
		},
		{
			name:        "switch never drives a counter negative",
			existing:    &upvote,
			incoming:    models.VoteDown,
			tally:       repositories.VoteTally{Up: 0, Down: 0},
			want:        repositories.VoteTally{Up: 0, Down: 1},
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := repositories.ApplyVoteTransition(tt.existing, tt.incoming, tt.tally)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

// A guest who upvotes and then changes their mind leaves the request with a
// single downvote, no matter how the two writes interleave with reads.
func TestApplyVoteTransitionSwitchSequence(t *testing.T) {
	tally := repositories.VoteTally{}

	tally, changed := repositories.ApplyVoteTransition(nil, models.VoteUp, tally)
	assert.True(t, changed)
	assert.Equal(t, repositories.VoteTally{Up: 1, Down: 0}, tally)

	upvote := models.VoteUp
	tally, changed = repositories.ApplyVoteTransition(&upvote, models.VoteDown, tally)
	assert.True(t, changed)
	assert.Equal(t, repositories.VoteTally{Up: 0, Down: 1}, tally)
}
