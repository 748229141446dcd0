package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"newsreader/internal/cli/output"
	"newsreader/internal/handler/http/auth"
)

func (a *app) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the server-side article cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop cached headlines and search results (favorites are kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.client.ClearCache(cmd.Context())
			if err != nil {
				return err
			}
			if a.out.JSON() {
				return a.out.PrintJSON(map[string]int64{"deleted": n})
			}
			a.out.Success("deleted %d cached articles", n)
			return nil
		},
	})
	return cmd
}

func (a *app) countriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List supported headline countries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			countries, def, err := a.client.Countries(cmd.Context())
			if err != nil {
				return err
			}
			if a.out.JSON() {
				return a.out.PrintJSON(map[string]any{"data": countries, "default": def})
			}
			tbl := output.NewTable(a.out.Out(), "code", "name", "flag")
			for _, c := range countries {
				code := c.Code
				if code == def {
					code = a.out.Bold(code + " (default)")
				}
				tbl.AddRow(code, c.Name, c.Flag)
			}
			tbl.Render()
			return nil
		},
	}
}

// tokenCmd mints a bearer token locally with the server's signing secret.
func (a *app) tokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if role != auth.RoleAdmin && role != auth.RoleViewer {
				return fmt.Errorf("invalid role %q: must be %s or %s", role, auth.RoleAdmin, auth.RoleViewer)
			}
			if a.cfg.Auth.Secret == "" {
				return errors.New("signing secret is required: set auth.secret, NEWSCTL_AUTH_SECRET or JWT_SECRET")
			}
			iss, err := auth.NewIssuer(a.cfg.Auth.Secret)
			if err != nil {
				return err
			}
			tok, err := iss.Issue(subject, role, ttl)
			if err != nil {
				return err
			}
			if a.out.JSON() {
				return a.out.PrintJSON(map[string]any{
					"token":      tok,
					"role":       role,
					"expires_at": time.Now().Add(ttl).UTC().Format(time.RFC3339),
				})
			}
			_, err = fmt.Fprintln(a.out.Out(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "newsctl", "token subject")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "token role: admin or viewer")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
