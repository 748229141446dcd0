package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"newsreader/internal/cli/apiclient"
	"newsreader/internal/cli/output"
	"newsreader/internal/common/pagination"
	"newsreader/internal/handler/http/article"
)

func (a *app) headlinesCmd() *cobra.Command {
	var opts apiclient.HeadlinesOptions
	cmd := &cobra.Command{
		Use:   "headlines",
		Short: "Show top headlines for a country",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.Headlines(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if a.out.JSON() {
				return a.out.PrintJSON(resp)
			}
			if resp.Stale {
				a.out.Warning("news API unreachable: showing cached headlines for %s", strings.ToUpper(resp.Country))
			}
			a.renderArticles(resp.Data, resp.Pagination)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Country, "country", "c", "", "two-letter country code (server default when empty)")
	cmd.Flags().IntVarP(&opts.Page, "page", "p", 0, "page number")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "articles per page")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cached feed")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	var (
		sources []string
		page    int
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search articles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			resp, err := a.client.Search(cmd.Context(), query, sources, page, limit)
			if err != nil {
				return err
			}
			if a.out.JSON() {
				return a.out.PrintJSON(resp)
			}
			if len(resp.Data) == 0 {
				a.out.Info("no articles match %q", query)
				return nil
			}
			a.renderArticles(resp.Data, resp.Pagination)
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&sources, "sources", "s", nil, "restrict to source ids (comma separated)")
	cmd.Flags().IntVarP(&page, "page", "p", 0, "page number")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "articles per page")
	return cmd
}

func (a *app) renderArticles(items []article.DTO, meta pagination.Metadata) {
	tbl := output.NewTable(a.out.Out(), "published", "source", "title", "fav")
	for _, it := range items {
		fav := ""
		if it.IsFavorite {
			fav = "*"
		}
		tbl.AddRow(it.PublishedAtDisplay, output.Truncate(it.Source.Name, 20), output.Truncate(it.Title, 70), fav)
	}
	tbl.Render()
	a.out.Info("%s", pageFooter(meta, len(items)))
}

func pageFooter(m pagination.Metadata, n int) string {
	parts := []string{fmt.Sprintf("page %d", m.Page), fmt.Sprintf("%d articles", n)}
	if m.PrevPage != nil {
		parts = append(parts, "prev: "+strconv.Itoa(*m.PrevPage))
	}
	if m.NextPage != nil {
		parts = append(parts, "next: "+strconv.Itoa(*m.NextPage))
	}
	return strings.Join(parts, " | ")
}
