package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "scope",
		Short:        "Crowdfunding campaign reader and event retriever",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("rpc", "", "chain RPC URL")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	campaignsCmd := &cobra.Command{
		Use:   "campaigns",
		Short: "Aggregate campaign state for a list of addresses",
		RunE:  runCampaigns,
	}
	campaignsCmd.Flags().StringSlice("campaign", nil, "campaign addresses (comma-separated)")
	root.AddCommand(campaignsCmd)

	campaignCmd := &cobra.Command{
		Use:   "campaign <address>",
		Short: "Show one campaign in detail",
		Args:  cobra.ExactArgs(1),
		RunE:  runCampaignDetail,
	}
	root.AddCommand(campaignCmd)

	eventsCmd := &cobra.Command{
		Use:   "events <address>",
		Short: "Fetch historical events for a campaign",
		Args:  cobra.ExactArgs(1),
		RunE:  runEvents,
	}
	eventsCmd.Flags().String("strategy", "chain", "retrieval strategy (chain, explorer, subgraph)")
	eventsCmd.Flags().String("kind", "Funded", "event kind (Funded, TierFunded, Withdrawal, Refund, TokensPurchased, VoteCast, Transfer)")
	eventsCmd.Flags().String("account", "", "participant address (subgraph strategy only)")
	eventsCmd.Flags().Int("target", 10, "how many events the chain scan looks for")
	eventsCmd.Flags().Int("page-size", 10, "events per printed page")
	eventsCmd.Flags().Uint64("chain-id", 1, "chain id for the explorer API")
	eventsCmd.Flags().String("explorer-url", "", "block explorer API endpoint")
	eventsCmd.Flags().String("explorer-api-key", "", "block explorer API key")
	eventsCmd.Flags().String("subgraph-url", "", "subgraph endpoint URL")
	eventsCmd.Flags().Duration("cache-ttl", 45*time.Second, "event cache TTL")
	eventsCmd.Flags().Uint64("scan-window", 1000, "blocks per scan window")
	eventsCmd.Flags().Uint64("scan-ceiling", 50000, "max cumulative blocks scanned")
	eventsCmd.Flags().Duration("scan-delay", 200*time.Millisecond, "pause between scan windows")
	eventsCmd.Flags().Int("max-retries", 3, "max retries on rate limits")
	eventsCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "base retry backoff")
	eventsCmd.Flags().String("out", "", "optional JSONL archive path")
	eventsCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the event archive")
	eventsCmd.Flags().String("metrics-addr", "", "optional prometheus listen address")
	root.AddCommand(eventsCmd)

	mintCmd := &cobra.Command{
		Use:   "mint <txhash>",
		Short: "Recover the minted token id from a transaction receipt",
		Args:  cobra.ExactArgs(1),
		RunE:  runMint,
	}
	mintCmd.Flags().String("contract", "", "token contract address")
	mintCmd.Flags().String("ipfs-gateway", "https://ipfs.io/ipfs/", "IPFS gateway for metadata")
	root.AddCommand(mintCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
