package main

import (
	"fmt"

	"github.com/couchcryptid/ocean-series-service/internal/adapter/kafka"
	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish every point to Kafka (KAFKA_BROKERS, KAFKA_TOPIC)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, v, err := buildView(cmd)
		if err != nil {
			return err
		}
		pub := kafka.NewPublisher(e.cfg, e.logger, e.metrics)
		defer pub.Close() //nolint:errcheck // close error after a successful publish is not actionable

		n, err := pub.Publish(cmd.Context(), v)
		if err != nil {
			return fmt.Errorf("published %d points before failing: %w", n, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "published %d points to %s\n", n, e.cfg.KafkaTopic)
		return nil
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the built-in series catalog as YAML",
	Long: `Print the built-in catalog. Save it, edit the shapes or anomalies, and point
CATALOG_PATH (or --catalog) at the file to generate from the edited copy.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return domain.MarshalCatalog(cmd.OutOrStdout(), domain.DefaultCatalog())
	},
}
