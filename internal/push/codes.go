package push

import (
	"strings"

	"gymbuddy-server/internal/models"

	fcm "firebase.google.com/go/v4/messaging"
)

// invalidTokenMarker - фрагмент текста ошибки FCM, когда INVALID_ARGUMENT относится к токену.
const invalidTokenMarker = "registration token"

// ClassifyError переводит ошибку FCM по конкретному токену в канонический код.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case fcm.IsUnregistered(err):
		return models.CodeTokenNotRegistered
	case fcm.IsInvalidArgument(err):
		// FCM отдает INVALID_ARGUMENT и на битый payload (зарезервированный ключ data,
		// превышение 4KB). Удалять токены можно только когда ошибка про сам токен.
		if strings.Contains(strings.ToLower(err.Error()), invalidTokenMarker) {
			return models.CodeInvalidRegistrationToken
		}
		return models.CodeInvalidArgument
	case fcm.IsSenderIDMismatch(err):
		return models.CodeMismatchedCredential
	case fcm.IsQuotaExceeded(err):
		return models.CodeMessageRateExceeded
	case fcm.IsUnavailable(err):
		return models.CodeServerUnavailable
	case fcm.IsInternal(err):
		return models.CodeInternalError
	case fcm.IsThirdPartyAuthError(err):
		return models.CodeThirdPartyAuthError
	default:
		return models.CodeUnknownError
	}
}
