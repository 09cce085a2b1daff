package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/dcmgroup/internal/model"
	"github.com/rcliao/dcmgroup/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the series of a run",
		Long:  "Print the series records of a run as JSON, or as dicominfo.tsv rows with --format text.",
		Args:  cobra.ExactArgs(1),
		Run:   runShow,
	}

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	run, infos, err := s.GetRun(cmd.Context(), args[0])
	if err != nil {
		exitErr("show", err)
	}

	if formatFlag == "text" {
		if err := report.WriteTSV(cmd.OutOrStdout(), infos); err != nil {
			exitErr("write tsv", err)
		}
		return
	}

	b, _ := json.MarshalIndent(struct {
		*model.Run
		Series []model.SeqInfo `json:"series_info"`
	}{run, infos}, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
