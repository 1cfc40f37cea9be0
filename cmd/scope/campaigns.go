package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"campaignScope/internal/campaign"
	"campaignScope/internal/chain"
	"campaignScope/internal/config"
	"campaignScope/internal/model"
)

func runCampaigns(cmd *cobra.Command, _ []string) error {
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

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	addrs, err := campaign.ParseAddresses(cfg.Campaigns)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		return fmt.Errorf("campaign address list is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	aggregator, err := campaign.NewAggregator(chainClient, logger)
	if err != nil {
		return err
	}

	records, err := aggregator.Aggregate(ctx, addrs)
	if err != nil {
		return err
	}

	logger.Info("campaigns aggregated",
		zap.Int("requested", len(addrs)),
		zap.Int("returned", len(records)))

	renderCampaignTable(records)
	return nil
}

func runCampaignDetail(cmd *cobra.Command, args []string) error {
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

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(args[0]) {
		return fmt.Errorf("invalid campaign address: %s", args[0])
	}
	addr := common.HexToAddress(args[0])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	aggregator, err := campaign.NewAggregator(chainClient, logger)
	if err != nil {
		return err
	}

	record, err := aggregator.Detail(ctx, addr)
	if err != nil {
		return fmt.Errorf("fetch campaign %s: %w", addr.Hex(), err)
	}

	renderCampaignDetail(record)
	return nil
}

func renderCampaignTable(records []model.Campaign) {
	if len(records) == 0 {
		fmt.Println("No campaigns to display.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Address", "Name", "Goal", "Balance", "Remaining", "Backers", "State"})
	for _, record := range records {
		t.AppendRow(table.Row{
			record.Address,
			record.Name,
			record.Goal,
			record.Balance,
			record.Remaining,
			record.TotalBackers,
			record.State.String(),
		})
	}
	t.Render()
}

func renderCampaignDetail(record model.Campaign) {
	fmt.Printf("%s (%s)\n", record.Name, record.Address)
	fmt.Printf("  %s\n", record.Description)
	fmt.Printf("  goal %s, balance %s, remaining %s\n", record.Goal, record.Balance, record.Remaining)
	fmt.Printf("  deadline %d, state %s, paused %v\n", record.Deadline, record.State.String(), record.Paused)
	fmt.Printf("  backers: %d tier + %d custom = %d\n", record.TierBackers, record.CustomBackers, record.TotalBackers)

	if len(record.Tiers) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Tier", "Amount", "Backers"})
	for _, tier := range record.Tiers {
		t.AppendRow(table.Row{tier.Name, tier.Amount, tier.Backers})
	}
	t.Render()
}
