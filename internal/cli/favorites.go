package cli

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"newsreader/internal/cli/apiclient"
	"newsreader/internal/cli/output"
	"newsreader/internal/handler/http/article"
)

func (a *app) favoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorite articles",
	}
	cmd.AddCommand(
		a.favoritesListCmd(),
		a.favoritesAddCmd(),
		a.favoritesRemoveCmd(),
		a.favoritesClearCmd(),
		a.favoritesExportCmd(),
	)
	return cmd
}

func (a *app) favoritesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List favorites, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			favs, err := a.client.Favorites(cmd.Context())
			if err != nil {
				return err
			}
			if a.out.JSON() {
				return a.out.PrintJSON(favs)
			}
			if len(favs) == 0 {
				a.out.Info("no favorites yet")
				return nil
			}
			tbl := output.NewTable(a.out.Out(), "saved", "source", "title", "url")
			for _, f := range favs {
				saved := ""
				if f.FavoritedAt != nil {
					saved = f.FavoritedAt.Local().Format(time.DateTime)
				}
				tbl.AddRow(saved, output.Truncate(f.Source.Name, 20), output.Truncate(f.Title, 50), f.URL)
			}
			tbl.Render()
			return nil
		},
	}
}

func (a *app) favoritesAddCmd() *cobra.Command {
	var dto article.DTO
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Save an article as a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dto.URL = args[0]
			saved, err := a.client.AddFavorite(cmd.Context(), dto)
			if err != nil {
				return err
			}
			if a.out.JSON() {
				return a.out.PrintJSON(saved)
			}
			a.out.Success("saved %s", saved.URL)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dto.Title, "title", "t", "", "article title (required)")
	cmd.Flags().StringVar(&dto.Description, "description", "", "article description")
	cmd.Flags().StringVar(&dto.Source.Name, "source", "", "source name")
	cmd.Flags().StringVar(&dto.PublishedAt, "published-at", "", "publish time (RFC 3339)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func (a *app) favoritesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <url>",
		Aliases: []string{"rm"},
		Short:   "Remove a favorite",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.client.RemoveFavorite(cmd.Context(), args[0])
			if apiclient.IsStatus(err, http.StatusNotFound) {
				a.out.Warning("%s is not a favorite", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			a.out.Success("removed %s", args[0])
			return nil
		},
	}
}

func (a *app) favoritesClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every favorite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.client.ClearFavorites(cmd.Context())
			if err != nil {
				return err
			}
			if a.out.JSON() {
				return a.out.PrintJSON(map[string]int64{"removed": n})
			}
			a.out.Success("removed %d favorites", n)
			return nil
		},
	}
}

func (a *app) favoritesExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write favorites as JSON or YAML to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.ExportFavorites(cmd.Context(), format, a.out.Out()); err != nil {
				return fmt.Errorf("export favorites: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "export format: json or yaml")
	return cmd
}
