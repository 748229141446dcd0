package cli

import (
	"github.com/spf13/cobra"

	"newsreader/internal/cli/output"
	"newsreader/internal/domain/entity"
)

func (a *app) sourcesCmd() *cobra.Command {
	var (
		filter  entity.SourceFilter
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List news sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.Sources(cmd.Context(), filter, refresh)
			if err != nil {
				return err
			}
			if a.out.JSON() {
				return a.out.PrintJSON(resp)
			}
			if resp.Stale {
				a.out.Warning("news API unreachable: showing cached sources")
			}
			tbl := output.NewTable(a.out.Out(), "id", "name", "category", "language", "country")
			for _, s := range resp.Data {
				tbl.AddRow(s.ID, output.Truncate(s.Name, 30), s.Category, s.Language, s.Country)
			}
			tbl.Render()
			a.out.Info("%d sources", resp.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Category, "category", "", "filter by category")
	cmd.Flags().StringVar(&filter.Language, "language", "", "filter by language")
	cmd.Flags().StringVar(&filter.Country, "country", "", "filter by country")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached catalog")
	return cmd
}
