package transport

import (
	"github.com/rs/zerolog"
)

// Category groups classified failures for presentation.
type Category string

const (
	CategoryAuth       Category = "auth"
	CategoryForbidden  Category = "forbidden"
	CategoryNotFound   Category = "not_found"
	CategoryValidation Category = "validation"
	CategoryServer     Category = "server"
	CategoryNetwork    Category = "network"
	CategoryUnexpected Category = "unexpected"
)

// Notifier receives at most one classified failure per terminal request
// error. Implementations surface it to the user (toast, status bar, log).
type Notifier interface {
	Notify(category Category, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(category Category, message string)

func (f NotifierFunc) Notify(category Category, message string) { f(category, message) }

// LogNotifier writes notifications to a zerolog logger. It is the default
// notifier for headless hosts.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(category Category, message string) {
	n.Log.Warn().Str("category", string(category)).Msg(message)
}
