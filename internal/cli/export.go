package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/dcmgroup/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export <run-id>",
		Short: "Export a run's file groups as JSON",
		Long:  "Write the filegroup.json document of a recorded run to stdout, or to --out.",
		Args:  cobra.ExactArgs(1),
		Run:   runExport,
	}

	cmd.Flags().StringP("out", "o", "", "Write to this file instead of stdout")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	groups, err := s.ExportGroups(cmd.Context(), args[0])
	if err != nil {
		exitErr("export", err)
	}

	if out != "" {
		if err := report.SaveFileGroups(out, groups); err != nil {
			exitErr("export", err)
		}
		return
	}
	if err := report.EncodeFileGroups(cmd.OutOrStdout(), groups); err != nil {
		exitErr("export", err)
	}
}
