package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/tsplhq/registration-api/internal/api/shared"
	"github.com/tsplhq/registration-api/internal/domain"
	"github.com/tsplhq/registration-api/internal/store"
)

// AccountLookup is the minimal account access the admin check needs.
type AccountLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// AdminMiddleware restricts routes to accounts with the admin flag set.
// It must run after Authenticate, which places the account ID in the
// request context.
type AdminMiddleware struct {
	accounts AccountLookup
}

// NewAdminMiddleware creates a new AdminMiddleware with the given dependencies.
func NewAdminMiddleware(accounts AccountLookup) *AdminMiddleware {
	return &AdminMiddleware{
		accounts: accounts,
	}
}

// RequireAdmin loads the authenticated account and rejects the request
// with 403 unless the account is an admin.
func (m *AdminMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := GetAccountID(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}

		account, err := m.accounts.GetByID(r.Context(), accountID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Account not found")
				return
			}
			slog.Error("failed to load account for admin check",
				"error", err, "account_id", accountID)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authorization error")
			return
		}

		if !account.IsAdmin {
			shared.RespondWithError(w, r, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
