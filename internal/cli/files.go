package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "files <run-id> <series-id>",
		Short: "List the files of one series",
		Args:  cobra.ExactArgs(2),
		Run:   runFiles,
	}

	RootCmd.AddCommand(cmd)
}

func runFiles(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	files, err := s.SeriesFiles(cmd.Context(), args[0], args[1])
	if err != nil {
		exitErr("files", err)
	}

	if formatFlag == "text" {
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return
	}
	b, _ := json.MarshalIndent(files, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
