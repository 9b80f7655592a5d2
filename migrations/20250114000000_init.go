package migrations

import (
	"context"

	"github.com/manageyou/manageyou/internal/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		// accounts first: users carry an account_id foreign key.
		tables := []any{
			(*models.AccountDB)(nil),
			(*models.UserDB)(nil),
			(*models.DocumentDB)(nil),
			(*models.InvitationDB)(nil),
		}
		for _, table := range tables {
			if _, err := db.NewCreateTable().
				Model(table).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
		}

		indexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
			`CREATE INDEX IF NOT EXISTS idx_users_stripe_customer_id ON users (stripe_customer_id)`,
			`CREATE INDEX IF NOT EXISTS idx_documents_user_id ON documents (user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_invitations_account_id ON invitations (account_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_invitations_token ON invitations (invite_token)`,
		}
		for _, stmt := range indexes {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		tables := []any{
			(*models.InvitationDB)(nil),
			(*models.DocumentDB)(nil),
			(*models.UserDB)(nil),
			(*models.AccountDB)(nil),
		}
		for _, table := range tables {
			if _, err := db.NewDropTable().
				Model(table).
				IfExists().
				Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}
