package cmd

import (
	"fmt"

	"github.com/sarchlab/lifematrix/datarecording"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "List the runs in a recording, or print one of them.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, _ := cmd.Flags().GetString("run")
			show, _ := cmd.Flags().GetBool("show")

			reader, err := datarecording.NewReader(args[0])
			if err != nil {
				return err
			}
			defer reader.Close()

			out := cmd.OutOrStdout()

			if runID == "" {
				runs, err := datarecording.ListRuns(cmd.Context(), reader)
				if err != nil {
					return err
				}

				for _, r := range runs {
					fmt.Fprintln(out, r)
				}

				return nil
			}

			entries, err := datarecording.ReadGenerations(
				cmd.Context(), reader, runID)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				return fmt.Errorf("run %s not found in %s", runID, args[0])
			}

			for _, e := range entries {
				fmt.Fprintf(out,
					"generation %d, iteration %d, %.6fs, population %d\n",
					e.Generation, e.Iteration, e.Time, e.Population)

				if show {
					g := e.Grid()
					fmt.Fprint(out, g.String())
				}
			}

			return nil
		},
	}

	inspectCmd.Flags().String("run", "", "Run ID to print.")
	inspectCmd.Flags().Bool("show", false, "Print every generation as text.")

	return inspectCmd
}

func init() {
	rootCmd.AddCommand(newInspectCmd())
}
