package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rcliao/dcmgroup/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded grouping runs",
		Run:   runRuns,
	}

	cmd.Flags().StringP("subject", "s", "", "Filter by subject")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output run ids")

	RootCmd.AddCommand(cmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	subject, _ := cmd.Flags().GetString("subject")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), store.ListParams{Subject: subject, Limit: limit})
	if err != nil {
		exitErr("runs", err)
	}

	w := cmd.OutOrStdout()
	if idsOnly {
		for _, r := range runs {
			fmt.Fprintln(w, r.ID)
		}
		return
	}
	if formatFlag == "text" {
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d series\t%d files\t%s\n",
				r.ID, r.Subject, r.Session, r.Series, r.Files, humanize.Time(r.CreatedAt))
		}
		return
	}

	b, _ := json.MarshalIndent(runs, "", "  ")
	fmt.Fprintln(w, string(b))
}
