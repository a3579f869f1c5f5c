package cmd

import (
	"errors"
	"fmt"

	"catalog-sync/feature/catalog"
	"catalog-sync/feature/snapshot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	syncDryRun      bool
	syncCategories  []string
	syncConcurrency int
	syncReplay      string
)

// syncCmd runs one full reconciliation.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the supplier catalog into the storefront",
	Long: `Logs into the supplier, scrapes every configured category and brings the
storefront in line: new products are created, known ones updated and the ones
gone from the supplier archived (zero stock, draft, hidden).

Examples:
  # Full run over the configured categories
  sync

  # Plan only, no storefront writes
  sync --dry-run

  # One category with four parallel writers
  sync --category https://supplier.example/notebooks --concurrency 4

  # Re-run an archived scrape without crawling
  sync --replay 0b6f4c1e-...`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Plan and report without writing to the storefront")
	syncCmd.Flags().StringSliceVar(&syncCategories, "category", nil, "Category URL to sync (repeatable, replaces the configured list)")
	syncCmd.Flags().IntVar(&syncConcurrency, "concurrency", 0, "Parallel storefront writers per category (overrides sync.concurrency)")
	syncCmd.Flags().StringVar(&syncReplay, "replay", "", "Replay the archived scrape of a previous run instead of crawling")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	sync := a.cfg.Sync
	if syncConcurrency > 0 {
		sync.Concurrency = syncConcurrency
		if err := sync.Validate(); err != nil {
			return err
		}
	}

	source, err := a.source(syncReplay)
	if err != nil {
		return err
	}
	defer source.Close()

	urls := syncCategories
	if len(urls) == 0 {
		urls = a.cfg.Source.Categories
	}
	if len(urls) == 0 {
		if replay, ok := source.(*snapshot.ReplaySource); ok {
			if urls, err = replay.URLs(ctx); err != nil {
				return err
			}
		}
	}
	if len(urls) == 0 {
		return fmt.Errorf("no category urls configured (source.categories or --category)")
	}
	if a.cfg.Storefront.URL == "" {
		return fmt.Errorf("storefront url is required")
	}

	orch, err := a.orchestrator(source, sync, syncDryRun)
	if err != nil {
		return err
	}

	summary, err := orch.Run(ctx, urls)
	if errors.Is(err, catalog.ErrLoginFailed) {
		return err
	}
	if err != nil {
		return fmt.Errorf("sync run failed: %w", err)
	}

	printRunSummary(a.logger, summary)
	return nil
}

// printRunSummary logs one line per category and the run totals.
func printRunSummary(l *zap.Logger, s *catalog.RunSummary) {
	for _, c := range s.Categories {
		fields := []zap.Field{
			zap.String("category_url", c.URL),
			zap.String("category", c.CategoryName),
			zap.String("status", string(c.Status)),
			zap.Int("scraped", c.Scraped),
			zap.Int("created", c.Created),
			zap.Int("updated", c.Updated),
			zap.Int("archived", c.Archived),
			zap.Int("failed", c.Failed),
		}
		if c.Degraded() {
			fields = append(fields, zap.Bool("degraded", true), zap.Int("archives_suppressed", c.ArchivesSuppressed))
		}
		if c.Error != "" {
			fields = append(fields, zap.String("error", c.Error))
		}
		l.Info("Category result", fields...)
	}

	l.Info("Run result",
		zap.String("run_id", s.ID),
		zap.Bool("dry_run", s.DryRun),
		zap.Int("categories", len(s.Categories)),
		zap.Int("skipped", s.Skipped),
		zap.Int("scraped", s.Scraped),
		zap.Int("created", s.Created),
		zap.Int("updated", s.Updated),
		zap.Int("archived", s.Archived),
		zap.Int("failed", s.Failed),
	)
}
