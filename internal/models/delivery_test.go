package models_test

import (
	"testing"

	"gymbuddy-server/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestIsPrunableCode(t *testing.T) {
	assert.True(t, models.IsPrunableCode(models.CodeInvalidRegistrationToken))
	assert.True(t, models.IsPrunableCode(models.CodeTokenNotRegistered))

	for _, code := range []string{
		models.CodeInvalidArgument,
		models.CodeMismatchedCredential,
		models.CodeMessageRateExceeded,
		models.CodeServerUnavailable,
		models.CodeInternalError,
		models.CodeThirdPartyAuthError,
		models.CodeUnknownError,
		"",
		"messaging/invalid-registration-token",
	} {
		assert.False(t, models.IsPrunableCode(code), code)
	}
}

func TestMulticastResult_PrunableTokens(t *testing.T) {
	res := &models.MulticastResult{
		SuccessCount: 1,
		FailureCount: 5,
		Outcomes: []models.DeliveryOutcome{
			{Token: "A", Success: true},
			{Token: "B", Code: models.CodeInvalidRegistrationToken},
			{Token: "C", Code: models.CodeMessageRateExceeded},
			{Token: "D", Code: models.CodeTokenNotRegistered},
			{Token: "B", Code: models.CodeInvalidRegistrationToken},
			{Token: "E", Code: models.CodeServerUnavailable},
		},
	}

	assert.Equal(t, []string{"B", "D"}, res.PrunableTokens())

	var nilRes *models.MulticastResult
	assert.Nil(t, nilRes.PrunableTokens())
	assert.Empty(t, (&models.MulticastResult{}).PrunableTokens())
}
