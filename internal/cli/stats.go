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
		Use:   "stats",
		Short: "Show catalog statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	w := cmd.OutOrStdout()
	if formatFlag == "text" {
		fmt.Fprintf(w, "db:     %s (%s)\n", stats.DBPath, humanize.Bytes(uint64(stats.DBSizeBytes)))
		fmt.Fprintf(w, "runs:   %s\n", humanize.Comma(int64(stats.Runs)))
		fmt.Fprintf(w, "series: %s\n", humanize.Comma(int64(stats.Series)))
		fmt.Fprintf(w, "files:  %s\n", humanize.Comma(int64(stats.Files)))
		for _, ss := range stats.Subjects {
			fmt.Fprintf(w, "  %s\t%d runs\t%d series\n", ss.Subject, ss.Runs, ss.Series)
		}
		return
	}

	b, _ := json.MarshalIndent(struct {
		*store.Stats
		DBSize string `json:"db_size"`
	}{stats, humanize.Bytes(uint64(stats.DBSizeBytes))}, "", "  ")
	fmt.Fprintln(w, string(b))
}
