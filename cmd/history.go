package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"catalog-sync/feature/history"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd prints recent runs from the history database.
var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recent sync runs",
	Long:  `Lists recent runs from the history database, or the category results of one run.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		if a.history == nil {
			return fmt.Errorf("run history is disabled (database.enabled)")
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer w.Flush()

		if len(args) == 1 {
			run, err := a.history.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRun(w, run)
			return nil
		}

		runs, err := a.history.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tSCRAPED\tCREATED\tUPDATED\tARCHIVED\tFAILED\tSKIPPED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
				r.ID, r.StartedAt.Local().Format(time.DateTime), runStatus(r),
				r.Scraped, r.Created, r.Updated, r.Archived, r.Failed, r.Skipped)
		}
		return nil
	},
}

func printRun(w *tabwriter.Writer, run *history.Run) {
	fmt.Fprintf(w, "Run %s (%s), started %s\n\n", run.ID, runStatus(*run), run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintln(w, "CATEGORY\tSTATUS\tSCRAPED\tCREATED\tUPDATED\tARCHIVED\tFAILED\tERROR")
	for _, c := range run.Categories {
		name := c.CategoryName
		if name == "" {
			name = c.URL
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			name, c.Status, c.Scraped, c.Created, c.Updated, c.Archived, c.Failed, c.Error)
	}
}

func runStatus(r history.Run) string {
	if r.DryRun {
		return r.Status + " (dry run)"
	}
	return r.Status
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to show")
	RootCmd.AddCommand(historyCmd)
}
