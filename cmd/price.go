package cmd

import (
	"fmt"

	"catalog-sync/core/config"
	"catalog-sync/feature/pricing"

	"github.com/spf13/cobra"
)

// priceCmd prints the sell price for a net price with the configured rates.
var priceCmd = &cobra.Command{
	Use:   "price <net-price>",
	Short: "Compute the sell price of a net price",
	Long: `Applies the configured tax and margin rates to a supplier net price.
The price may be written the way the supplier shows it, e.g. "$ 1.234,56".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		pricer, err := pricing.NewFromConfig(cfg.Pricing)
		if err != nil {
			return err
		}

		net := pricing.ParseNetPrice(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "net %s x %s = %d\n", net.String(), pricer.Factor().String(), pricer.Price(net))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(priceCmd)
}
