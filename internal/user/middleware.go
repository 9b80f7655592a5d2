package user

import (
	"context"
	"log"
	"net/http"

	"github.com/manageyou/manageyou/internal/auth"
	"github.com/manageyou/manageyou/internal/logging"
	"github.com/manageyou/manageyou/internal/models"
)

type dbContextKey string

const dbUserContextKey dbContextKey = "db_user"

func GetDBUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(dbUserContextKey).(*models.User)
	return user, ok
}

// Middleware loads the database user for the verified token subject so
// downstream handlers work with fresh account state rather than the
// snapshot embedded in the token.
func Middleware(repo Repository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.GetClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized: user not found in context", http.StatusUnauthorized)
				return
			}

			dbUser, err := repo.GetByID(r.Context(), claims.Subject)
			if err != nil {
				log.Printf("Failed to load user %s: %v", claims.Subject, err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			if event, ok := logging.FromContext(r.Context()); ok {
				event.UserID = dbUser.ID
				event.UserEmail = dbUser.Email
				if dbUser.Account != nil {
					event.UserType = dbUser.Account.AccountTypeAccess
				}
			}

			ctx := context.WithValue(r.Context(), dbUserContextKey, dbUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
