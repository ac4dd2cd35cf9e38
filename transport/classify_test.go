package transport_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/ledgrio/ledgrio-go/internal/errors"
	"github.com/ledgrio/ledgrio-go/transport"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		path          string
		serverMessage string
		netErr        error
		wantAction    transport.Action
		wantCategory  transport.Category
		wantMessage   string
		wantErr       error
	}{
		{
			name:          "bad request with server message",
			status:        400,
			path:          "/fee/create",
			serverMessage: "Term is not open for fee creation",
			wantAction:    transport.ActionNotifyOnly,
			wantCategory:  transport.CategoryValidation,
			wantMessage:   "Term is not open for fee creation",
			wantErr:       apperrors.ErrBadRequest,
		},
		{
			name:         "bad request fallback message",
			status:       400,
			path:         "/fee/create",
			wantAction:   transport.ActionNotifyOnly,
			wantCategory: transport.CategoryValidation,
			wantMessage:  "Bad request",
			wantErr:      apperrors.ErrBadRequest,
		},
		{
			name:         "unauthorized after spent refresh",
			status:       401,
			path:         "/user/me",
			wantAction:   transport.ActionForceLogout,
			wantCategory: transport.CategoryAuth,
			wantMessage:  "Your session has expired. Please log in again.",
			wantErr:      apperrors.ErrUnauthorized,
		},
		{
			name:         "forbidden",
			status:       403,
			path:         "/expense/approve",
			wantAction:   transport.ActionNotifyOnly,
			wantCategory: transport.CategoryForbidden,
			wantMessage:  "You are not authorized to perform this action.",
			wantErr:      apperrors.ErrForbidden,
		},
		{
			name:         "not found",
			status:       404,
			path:         "/student/missing",
			wantAction:   transport.ActionNotifyOnly,
			wantCategory: transport.CategoryNotFound,
			wantMessage:  "Resource not found.",
			wantErr:      apperrors.ErrNotFound,
		},
		{
			name:         "not found on notification polling is silent",
			status:       404,
			path:         "/notification/unread-count",
			wantAction:   transport.ActionSilent,
			wantCategory: transport.CategoryNotFound,
			wantMessage:  "Resource not found.",
			wantErr:      apperrors.ErrNotFound,
		},
		{
			name:          "validation with server message",
			status:        422,
			path:          "/user/profile",
			serverMessage: "Email is already in use",
			wantAction:    transport.ActionNotifyOnly,
			wantCategory:  transport.CategoryValidation,
			wantMessage:   "Email is already in use",
			wantErr:       apperrors.ErrValidation,
		},
		{
			name:         "validation fallback message",
			status:       422,
			path:         "/user/profile",
			wantAction:   transport.ActionNotifyOnly,
			wantCategory: transport.CategoryValidation,
			wantMessage:  "Validation error",
			wantErr:      apperrors.ErrValidation,
		},
		{
			name:          "server error",
			status:        500,
			path:          "/report/summary",
			serverMessage: "stack trace leaked",
			wantAction:    transport.ActionNotifyOnly,
			wantCategory:  transport.CategoryServer,
			wantMessage:   "Internal server error. Please try again later.",
			wantErr:       apperrors.ErrServer,
		},
		{
			name:         "network failure with no response",
			netErr:       errors.New("dial tcp: connection refused"),
			path:         "/user/me",
			wantAction:   transport.ActionNotifyOnly,
			wantCategory: transport.CategoryNetwork,
			wantMessage:  "Network error. Please check your connection.",
			wantErr:      apperrors.ErrNetwork,
		},
		{
			name:         "unrecognized status",
			status:       418,
			path:         "/user/me",
			wantAction:   transport.ActionNotifyOnly,
			wantCategory: transport.CategoryUnexpected,
			wantMessage:  "An unexpected error occurred.",
			wantErr:      apperrors.ErrUnexpected,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cls := transport.Classify(tc.status, tc.path, tc.serverMessage, tc.netErr)
			require.Equal(t, tc.wantAction, cls.Action)
			require.Equal(t, tc.wantCategory, cls.Category)
			require.Equal(t, tc.wantMessage, cls.Message)
			require.ErrorIs(t, cls.Err, tc.wantErr)
		})
	}
}
