package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"campaignScope/internal/chain"
	"campaignScope/internal/config"
	"campaignScope/internal/events"
	"campaignScope/internal/metrics"
	"campaignScope/internal/model"
	"campaignScope/internal/storage"
	"campaignScope/internal/storage/postgres"
)

func runEvents(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !common.IsHexAddress(args[0]) {
		return fmt.Errorf("invalid campaign address: %s", args[0])
	}

	kind, _ := cmd.Flags().GetString("kind")
	query := events.Query{
		Campaign: common.HexToAddress(args[0]),
		Kind:     model.EventKind(kind),
		Target:   cfg.Target,
	}

	account, _ := cmd.Flags().GetString("account")
	if account != "" {
		if !common.IsHexAddress(account) {
			return fmt.Errorf("invalid account address: %s", account)
		}
		query.Account = common.HexToAddress(account)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	source, cleanup, err := buildSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	cache := events.NewCache(cfg.CacheTTL)
	fetcher := events.NewFetcher(source, cache, logger)

	evts, err := fetcher.Fetch(ctx, query)
	if err != nil {
		if errors.Is(err, events.ErrCancelled) {
			return nil
		}
		return err
	}

	logger.Info("events fetched",
		zap.String("strategy", source.Name()),
		zap.String("campaign", query.Campaign.Hex()),
		zap.String("kind", string(query.Kind)),
		zap.Int("count", len(evts)))

	renderEventPages(evts, cfg.PageSize)

	return archiveEvents(ctx, cfg, evts)
}

// buildSource picks the retrieval strategy from configuration. All three
// return the same normalized events; only transport differs.
func buildSource(ctx context.Context, cfg config.Config, logger *zap.Logger) (events.Source, func(), error) {
	dec, err := events.NewDecoder()
	if err != nil {
		return nil, nil, err
	}

	switch cfg.Strategy {
	case "chain":
		if cfg.RPCURL == "" {
			return nil, nil, fmt.Errorf("rpc url is required")
		}
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect rpc: %w", err)
		}
		scanCfg := events.ScanConfig{
			Window:     cfg.ScanWindow,
			Ceiling:    cfg.ScanCeiling,
			Delay:      cfg.ScanDelay,
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryBackoff,
		}
		return events.NewChainScanSource(chainClient, dec, scanCfg, logger), chainClient.Close, nil
	case "explorer":
		source := events.NewExplorerSource(cfg.ExplorerURL, cfg.ExplorerAPIKey, cfg.ChainID, dec, logger)
		return source, func() {}, nil
	case "subgraph":
		return events.NewSubgraphSource(cfg.SubgraphURL, logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown strategy: %s", cfg.Strategy)
	}
}

func renderEventPages(evts []model.Event, pageSize int) {
	if len(evts) == 0 {
		fmt.Println("No events found.")
		return
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Block", "Kind", "Actor", "Amount", "Tier", "Token", "Tx"})

	for page := 1; ; page++ {
		slice, hasMore := events.NextPage(evts, page, pageSize)
		for _, event := range slice {
			tier := ""
			if event.TierIndex != nil {
				tier = fmt.Sprintf("%d", *event.TierIndex)
			}
			t.AppendRow(table.Row{
				event.BlockNumber,
				string(event.Kind),
				event.Actor,
				event.Amount,
				tier,
				event.TokenID,
				event.TxHash,
			})
		}
		if !hasMore {
			break
		}
	}
	t.Render()
}

func archiveEvents(ctx context.Context, cfg config.Config, evts []model.Event) error {
	if len(evts) == 0 {
		return nil
	}

	var sinks []storage.Storage
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PgDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sinks = append(sinks, store)
	}

	for _, sink := range sinks {
		if err := sink.PutEventBatch(evts); err != nil {
			return fmt.Errorf("archive events: %w", err)
		}
	}
	return nil
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics listener stopped", zap.Error(err))
	}
}
