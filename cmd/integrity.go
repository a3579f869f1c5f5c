package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"catalog-sync/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd runs every setup check.
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check that storage, database and storefront are ready for a sync",
	Long:  `Checks the snapshot bucket layout, the run history schema and the storefront API credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(cmd.Context(), func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
			return printJSON(svc.CheckAll(ctx))
		})
	},
}

// storageCheckCmd checks and optionally fixes the archive folders.
var storageCheckCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the snapshot bucket folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(cmd.Context(), func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
			missing, err := svc.CheckStructure(ctx)
			if err != nil {
				return err
			}
			if len(missing) == 0 {
				l.Info("Archive structure OK")
				return nil
			}

			l.Warn("Missing folders detected", zap.Strings("missing", missing))
			if !fixFlag {
				l.Info("Run with --fix to create them")
				return nil
			}
			return svc.FixStructure(ctx, missing)
		})
	},
}

// databaseCheckCmd checks the history schema.
var databaseCheckCmd = &cobra.Command{
	Use:   "database",
	Short: "Check the run history schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(cmd.Context(), func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
			report, err := svc.CheckDatabase()
			if err != nil {
				return err
			}
			if err := printJSON(report); err != nil {
				return err
			}
			if !report.Matched {
				return fmt.Errorf("history schema does not match")
			}
			return nil
		})
	},
}

// storefrontCheckCmd probes the storefront API.
var storefrontCheckCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Probe the storefront API with the configured credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(cmd.Context(), func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
			report, err := svc.CheckStorefront(ctx)
			if err != nil {
				return err
			}
			if !report.Reachable {
				return fmt.Errorf("storefront unreachable: %s", report.Error)
			}
			l.Info("Storefront reachable", zap.Int64("latency_ms", report.LatencyMS))
			return nil
		})
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(storageCheckCmd, databaseCheckCmd, storefrontCheckCmd)

	storageCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folders")
}

func withIntegrity(ctx context.Context, fn func(context.Context, *integrity.Service, *zap.Logger) error) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	return fn(ctx, a.integrity().Service(), a.logger)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
