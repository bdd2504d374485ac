package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, raw := range []string{"pending", "under_review", "approved", "rejected", "completed"} {
		status, err := ParseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, Status(raw), status)
	}

	for _, raw := range []string{"in_progress", "done", "PENDING", ""} {
		_, err := ParseStatus(raw)
		assert.Error(t, err, raw)
	}
}

func TestCanTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusPending, StatusUnderReview},
		{StatusUnderReview, StatusApproved},
		{StatusUnderReview, StatusRejected},
		{StatusApproved, StatusCompleted},
	}
	for _, pair := range allowed {
		assert.True(t, CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}

	denied := [][2]Status{
		{StatusPending, StatusApproved},
		{StatusPending, StatusCompleted},
		{StatusRejected, StatusCompleted},
		{StatusCompleted, StatusPending},
		{StatusUnderReview, StatusCompleted},
	}
	for _, pair := range denied {
		assert.False(t, CanTransition(pair[0], pair[1]), "%s -> %s", pair[0], pair[1])
	}
}
