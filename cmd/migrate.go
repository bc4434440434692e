package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"agroinnova-backend/database"
)

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(a *app, db dbHandle) error {
				if err := database.Migrate(db); err != nil {
					return err
				}
				return printVersion(cmd, db)
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid steps %q: %w", args[0], err)
				}
				steps = n
			}
			return withDB(func(a *app, db dbHandle) error {
				if err := database.MigrateDown(db, steps); err != nil {
					return err
				}
				return printVersion(cmd, db)
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(_ *app, db dbHandle) error {
				return printVersion(cmd, db)
			})
		},
	})

	return migrateCmd
}

func printVersion(cmd *cobra.Command, db dbHandle) error {
	version, dirty, err := database.Version(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
	return nil
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load countries and complaint categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(func(_ *app, db dbHandle) error {
				if err := database.Migrate(db); err != nil {
					return err
				}
				res, err := database.Seed(db)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d countries, %d tipos, %d subtipos\n",
					res.Countries, res.Tipos, res.Subtipos)
				return nil
			})
		},
	}
}
