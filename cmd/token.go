package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ministry-site/internal/auth"
)

func (a *app) tokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Issue an admin API token for scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, nil); err != nil {
				return err
			}
			if a.v.GetString("admin.secret") == "" {
				a.log.Warn("admin.secret is not set; the token is only valid for this process")
			}

			authn, err := auth.New(auth.Config{
				Username: a.cfg.Admin.Username,
				Password: a.cfg.Admin.Password,
				Secret:   []byte(a.cfg.Admin.Secret),
				TTL:      a.cfg.Admin.SessionTTL,
			})
			if err != nil {
				return err
			}
			sess, err := authn.Issue(a.cfg.Admin.Username)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sess.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", sess.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
}
