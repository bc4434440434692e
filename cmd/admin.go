package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"agroinnova-backend/database"
	"agroinnova-backend/internal/services"
)

type dbHandle = *sqlx.DB

// withDB opens the configured database for a one-shot command
func withDB(fn func(a *app, db dbHandle) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(a, db)
}

func newCreateAdminCommand() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a verified admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(a *app, db dbHandle) error {
				if err := database.Migrate(db); err != nil {
					return err
				}
				auth := services.NewAuthService(a.cfg.JWTSecret, a.cfg.JWTExpiration, services.NewInMemoryTokenBlacklist())
				emails := services.NewEmailService(services.NewLogMailer(a.log), a.log)
				users := services.NewUserService(db, auth, emails, services.PolicyFromConfig(a.cfg), a.log)

				user, err := users.CreateAdmin(cmd.Context(), username, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s created with id %d\n", user.Username, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
