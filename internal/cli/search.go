package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/dcmgroup/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search recorded series",
		Long:  "Find series across runs whose id, protocol name or series description contains the query.",
		Args:  cobra.ExactArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("subject", "s", "", "Filter by subject")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	subject, _ := cmd.Flags().GetString("subject")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := s.Search(cmd.Context(), store.SearchParams{
		Subject: subject,
		Query:   args[0],
		Limit:   limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if formatFlag == "text" {
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%d files\n",
				r.RunID, r.Subject, r.Info.SeriesID, r.Info.ProtocolName, r.Info.Dims[3])
		}
		return
	}

	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
