// backend/models/change_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{StatusPending, StatusAISuggested},
		{StatusAISuggested, StatusValidated},
		{StatusAISuggested, StatusCorrected},
		{StatusAISuggested, StatusRejected},
		{StatusValidated, StatusCorrected},
		{StatusCorrected, StatusRejected},
		{StatusRejected, StatusValidated},
		{StatusValidated, StatusValidated},
	}
	for _, tc := range allowed {
		assert.NoError(t, ValidateTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to string }{
		{StatusPending, StatusValidated},
		{StatusPending, StatusPending},
		{StatusAISuggested, StatusPending},
		{StatusValidated, StatusPending},
		{StatusRejected, StatusAISuggested},
		{StatusValidated, StatusAISuggested},
		{"bogus", StatusValidated},
	}
	for _, tc := range denied {
		assert.Error(t, ValidateTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusValidated))
	assert.True(t, IsTerminal(StatusCorrected))
	assert.True(t, IsTerminal(StatusRejected))
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusAISuggested))
}

func TestStatusForDecision(t *testing.T) {
	assert.Equal(t, StatusValidated, StatusForDecision(DecisionApproved))
	assert.Equal(t, StatusCorrected, StatusForDecision(DecisionCorrected))
	assert.Equal(t, StatusRejected, StatusForDecision(DecisionRejected))
	assert.Equal(t, "", StatusForDecision("maybe"))
}
