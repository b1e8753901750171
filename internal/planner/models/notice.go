package models

import "time"

// ============================================================
// Notices
// ============================================================

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

// Notice: короткое сообщение для пользователя (toast).
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

type Notifier interface {
	Notify(Notice)
}

// NotifierFunc позволяет использовать функцию как Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Discard игнорирует все уведомления.
var Discard Notifier = NotifierFunc(func(Notice) {})

func NewNotice(level NoticeLevel, msg string) Notice {
	return Notice{Level: level, Message: msg, At: time.Now()}
}
