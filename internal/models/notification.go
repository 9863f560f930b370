package models

import (
	"fmt"
	"strconv"
	"time"
)

// Имена коллекций Firestore по умолчанию.
const (
	NotificationsCollection = "notifications"
	TokensCollection        = "fcm_tokens"
)

// Поля документа notifications/{id}.
const (
	FieldUserID         = "user_id"
	FieldSenderID       = "sender_id"
	FieldSenderUsername = "sender_username"
	FieldType           = "type"
	FieldTitle          = "title"
	FieldBody           = "body"
	FieldData           = "data"
	FieldIsRead         = "is_read"
	FieldCreatedAt      = "created_at"

	FieldFCMSent         = "fcm_sent"
	FieldFCMSentAt       = "fcm_sent_at"
	FieldFCMSuccessCount = "fcm_success_count"
	FieldFCMFailureCount = "fcm_failure_count"
	FieldFCMError        = "fcm_error"
	FieldFCMErrorAt      = "fcm_error_at"
)

// NotificationRecord - документ коллекции notifications.
// Поля fcm_* заполняет только диспетчер после попытки доставки.
type NotificationRecord struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	SenderID       string            `json:"sender_id,omitempty"`
	SenderUsername string            `json:"sender_username,omitempty"`
	Type           string            `json:"type,omitempty"`
	Title          string            `json:"title,omitempty"`
	Body           string            `json:"body,omitempty"`
	Data           map[string]string `json:"data,omitempty"`
	IsRead         bool              `json:"is_read"`
	CreatedAt      time.Time         `json:"created_at,omitempty"`

	FCMSent         *bool      `json:"fcm_sent,omitempty"`
	FCMSentAt       *time.Time `json:"fcm_sent_at,omitempty"`
	FCMSuccessCount *int       `json:"fcm_success_count,omitempty"`
	FCMFailureCount *int       `json:"fcm_failure_count,omitempty"`
	FCMError        string     `json:"fcm_error,omitempty"`
	FCMErrorAt      *time.Time `json:"fcm_error_at,omitempty"`
}

// Validate проверяет, что по записи вообще можно что-то доставить.
func (r *NotificationRecord) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrMalformedNotification)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: id is empty", ErrMalformedNotification)
	}
	if r.UserID == "" {
		return fmt.Errorf("%w: %s is empty", ErrMalformedNotification, FieldUserID)
	}
	return nil
}

// DecodeNotificationRecord собирает запись из сырых данных документа Firestore.
// Данные в FCM передаются только строками, поэтому нестроковые значения
// в data приводятся к строке. user_id обязан быть строкой.
func DecodeNotificationRecord(id string, raw map[string]interface{}) (*NotificationRecord, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: document %q has no data", ErrMalformedNotification, id)
	}

	userID, ok := raw[FieldUserID].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: document %q has no string %s", ErrMalformedNotification, id, FieldUserID)
	}

	rec := &NotificationRecord{
		ID:             id,
		UserID:         userID,
		SenderID:       stringValue(raw[FieldSenderID]),
		SenderUsername: stringValue(raw[FieldSenderUsername]),
		Type:           stringValue(raw[FieldType]),
		Title:          stringValue(raw[FieldTitle]),
		Body:           stringValue(raw[FieldBody]),
		FCMError:       stringValue(raw[FieldFCMError]),
	}

	if isRead, ok := raw[FieldIsRead].(bool); ok {
		rec.IsRead = isRead
	}
	if createdAt, ok := raw[FieldCreatedAt].(time.Time); ok {
		rec.CreatedAt = createdAt
	}
	if sent, ok := raw[FieldFCMSent].(bool); ok {
		rec.FCMSent = &sent
	}
	if sentAt, ok := raw[FieldFCMSentAt].(time.Time); ok {
		rec.FCMSentAt = &sentAt
	}
	if errAt, ok := raw[FieldFCMErrorAt].(time.Time); ok {
		rec.FCMErrorAt = &errAt
	}
	rec.FCMSuccessCount = intValue(raw[FieldFCMSuccessCount])
	rec.FCMFailureCount = intValue(raw[FieldFCMFailureCount])

	switch data := raw[FieldData].(type) {
	case map[string]interface{}:
		rec.Data = make(map[string]string, len(data))
		for k, v := range data {
			if v == nil {
				continue
			}
			rec.Data[k] = stringValue(v)
		}
	case map[string]string:
		rec.Data = make(map[string]string, len(data))
		for k, v := range data {
			rec.Data[k] = v
		}
	case nil:
	default:
		return nil, fmt.Errorf("%w: document %q has non-map %s", ErrMalformedNotification, id, FieldData)
	}

	return rec, nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

func intValue(v interface{}) *int {
	switch val := v.(type) {
	case int64:
		n := int(val)
		return &n
	case int:
		return &val
	case float64:
		n := int(val)
		return &n
	default:
		return nil
	}
}
