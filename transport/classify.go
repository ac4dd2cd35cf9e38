package transport

import (
	"net/http"
	"strings"

	apperrors "github.com/ledgrio/ledgrio-go/internal/errors"
)

// Action is the recovery action a classification prescribes.
type Action string

const (
	ActionRetryWithRefresh Action = "retry-with-refresh"
	ActionForceLogout      Action = "force-logout"
	ActionNotifyOnly       Action = "notify-only"
	ActionSilent           Action = "silent"
)

// Classification is the derived handling for a failed request. It has no
// lifecycle of its own; it is purely a function of status, path and
// environment.
type Classification struct {
	Action   Action
	Category Category
	Message  string
	Err      error
}

// Classify maps a terminal request failure to its notification category and
// user-facing message. serverMessage is the optional "message" field of the
// error response body; netErr is set when no response arrived at all.
func Classify(status int, path, serverMessage string, netErr error) Classification {
	if netErr != nil {
		return Classification{
			Action:   ActionNotifyOnly,
			Category: CategoryNetwork,
			Message:  "Network error. Please check your connection.",
			Err:      apperrors.ErrNetwork,
		}
	}

	switch status {
	case http.StatusBadRequest:
		return Classification{
			Action:   ActionNotifyOnly,
			Category: CategoryValidation,
			Message:  messageOr(serverMessage, "Bad request"),
			Err:      apperrors.ErrBadRequest,
		}
	case http.StatusUnauthorized:
		// Reaching classification with a 401 means the refresh cycle is
		// already spent; the session is gone.
		return Classification{
			Action:   ActionForceLogout,
			Category: CategoryAuth,
			Message:  "Your session has expired. Please log in again.",
			Err:      apperrors.ErrUnauthorized,
		}
	case http.StatusForbidden:
		return Classification{
			Action:   ActionNotifyOnly,
			Category: CategoryForbidden,
			Message:  "You are not authorized to perform this action.",
			Err:      apperrors.ErrForbidden,
		}
	case http.StatusNotFound:
		cls := Classification{
			Action:   ActionNotifyOnly,
			Category: CategoryNotFound,
			Message:  "Resource not found.",
			Err:      apperrors.ErrNotFound,
		}
		// Notification polling 404s are routine noise, never worth a toast.
		if isNotificationPath(path) {
			cls.Action = ActionSilent
		}
		return cls
	case http.StatusUnprocessableEntity:
		return Classification{
			Action:   ActionNotifyOnly,
			Category: CategoryValidation,
			Message:  messageOr(serverMessage, "Validation error"),
			Err:      apperrors.ErrValidation,
		}
	}

	if status >= http.StatusInternalServerError {
		return Classification{
			Action:   ActionNotifyOnly,
			Category: CategoryServer,
			Message:  "Internal server error. Please try again later.",
			Err:      apperrors.ErrServer,
		}
	}

	return Classification{
		Action:   ActionNotifyOnly,
		Category: CategoryUnexpected,
		Message:  "An unexpected error occurred.",
		Err:      apperrors.ErrUnexpected,
	}
}

func messageOr(message, fallback string) string {
	if strings.TrimSpace(message) != "" {
		return message
	}
	return fallback
}

func isNotificationPath(path string) bool {
	return strings.Contains(path, "/notification")
}
