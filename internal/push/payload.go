package push

import "gymbuddy-server/internal/models"

// Константы протокола, на которые завязан мобильный клиент.
const (
	DefaultTitle       = "GymBuddy"
	DefaultBody        = ""
	DefaultType        = "default"
	ChannelID          = "high_importance_channel"
	DefaultSound       = "default"
	AccentColor        = "#FF9800"
	AndroidPriority    = "high"
	BadgeIncrement     = 1
	ClickActionKey     = "click_action"
	ClickActionFlutter = "FLUTTER_NOTIFICATION_CLICK"

	DataKeyNotificationID = "notification_id"
	DataKeyType           = "type"
)

// AndroidHints - платформенные настройки Android.
type AndroidHints struct {
	Priority  string
	ChannelID string
	Sound     string
	Color     string
}

// APNSHints - платформенные настройки iOS.
type APNSHints struct {
	Sound string
	Badge int
}

// Message - мультикаст-сообщение, не привязанное к конкретному SDK.
type Message struct {
	Tokens  []string
	Title   string
	Body    string
	Data    map[string]string
	Android AndroidHints
	APNS    APNSHints
}

// BuildMessage собирает push для записи и списка токенов.
func BuildMessage(rec *models.NotificationRecord, tokens []string) *Message {
	title := rec.Title
	if title == "" {
		title = DefaultTitle
	}
	body := rec.Body
	if body == "" {
		body = DefaultBody
	}

	return &Message{
		Tokens: tokens,
		Title:  title,
		Body:   body,
		Data:   MergeData(rec.ID, rec.Type, rec.Data),
		Android: AndroidHints{
			Priority:  AndroidPriority,
			ChannelID: ChannelID,
			Sound:     DefaultSound,
			Color:     AccentColor,
		},
		APNS: APNSHints{
			Sound: DefaultSound,
			Badge: BadgeIncrement,
		},
	}
}

// MergeData строит data-часть push.
// Сначала служебные ключи (notification_id, type, click_action), затем данные
// записи поверх них: при совпадении ключей побеждают данные записи, в том числе
// для click_action.
func MergeData(notificationID, notificationType string, extra map[string]string) map[string]string {
	if notificationType == "" {
		notificationType = DefaultType
	}
	data := make(map[string]string, len(extra)+3)
	data[DataKeyNotificationID] = notificationID
	data[DataKeyType] = notificationType
	data[ClickActionKey] = ClickActionFlutter
	for k, v := range extra {
		data[k] = v
	}
	return data
}
