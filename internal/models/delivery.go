package models

// Канонические коды ошибок доставки по токену.
const (
	CodeInvalidRegistrationToken = "invalid-registration-token"
	CodeTokenNotRegistered       = "registration-token-not-registered"
	CodeInvalidArgument          = "invalid-argument"
	CodeMismatchedCredential     = "mismatched-credential"
	CodeMessageRateExceeded      = "message-rate-exceeded"
	CodeServerUnavailable        = "server-unavailable"
	CodeInternalError            = "internal-error"
	CodeThirdPartyAuthError      = "third-party-auth-error"
	CodeUnknownError             = "unknown-error"
)

// IsPrunableCode сообщает, означает ли код, что токен мёртв навсегда.
// Только такие токены удаляются из набора пользователя.
func IsPrunableCode(code string) bool {
	return code == CodeInvalidRegistrationToken || code == CodeTokenNotRegistered
}

// DeliveryOutcome - результат отправки на один токен.
type DeliveryOutcome struct {
	Token   string
	Success bool
	Code    string
	Err     error
}

// MulticastResult - ответ push-сервиса на мультикаст.
// Outcomes[i] соответствует i-му отправленному токену.
type MulticastResult struct {
	SuccessCount int
	FailureCount int
	Outcomes     []DeliveryOutcome
}

// PrunableTokens возвращает множество токенов, которые нужно удалить.
// Порядок - порядок первого появления, дубликаты схлопываются.
func (r *MulticastResult) PrunableTokens() []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, o := range r.Outcomes {
		if o.Success || !IsPrunableCode(o.Code) {
			continue
		}
		if _, dup := seen[o.Token]; dup {
			continue
		}
		seen[o.Token] = struct{}{}
		out = append(out, o.Token)
	}
	return out
}
