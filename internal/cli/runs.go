package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/rubybook/internal/store"
	"github.com/spf13/cobra"
)

var (
	runsDB    string
	runsLimit int
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Show word stats recorded with --stats-db",
	Long:  "With no argument, lists recent runs. With a run ID, shows that run's most frequently seen words.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsDB, "stats-db", "", "Stats database (default ~/.rubybook/stats.db)")
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum number of rows")
}

func openStatsDB() (*store.DB, error) {
	path := runsDB
	if path == "" {
		var err error
		if path, err = store.DefaultDBPath(); err != nil {
			return nil, err
		}
	}
	return store.Open(path)
}

func runRuns(cmd *cobra.Command, args []string) error {
	db, err := openStatsDB()
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	out := cmd.OutOrStdout()

	if len(args) > 0 {
		run, err := db.GetRun(args[0])
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("no run %s", args[0])
		}
		words, err := db.TopWords(run.RunID, runsLimit)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "## %s\n\n", runLabel(run))
		fmt.Fprintf(out, "Text length in words: %d (%d distinct)\n\n", run.TotalWords, run.WordCount)
		for _, w := range words {
			label := w.Surface
			if w.Sense != "" {
				label += "[" + w.Sense + "]"
			}
			fmt.Fprintf(out, "  %s        distance %d | seen %d\n", label, w.MaxDistance, w.TimesSeen)
		}
		return nil
	}

	runs, err := db.ListRuns(runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded. Rewrite a book with --learn-mode --stats-db first.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %s  %s words, %s\n", r.RunID, runLabel(&r),
			humanize.Comma(int64(r.TotalWords)), humanize.Time(time.UnixMilli(r.CreatedAt)))
	}
	return nil
}

func runLabel(r *store.Run) string {
	if r.Title != "" {
		return r.Title
	}
	return r.InputPath
}
