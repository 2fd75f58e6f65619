package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ministry-site/internal/store"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and print the schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, map[string]string{"data.dir": "data-dir"}); err != nil {
				return err
			}

			db, err := store.Open(cmd.Context(), a.cfg.Data.Dir)
			if err != nil {
				return err
			}
			defer db.Close()

			version, err := db.Version(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info("database migrated", "dir", a.cfg.Data.Dir, "version", version)
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
	cmd.Flags().String("data-dir", "", "directory for the database and uploads")
	return cmd
}
