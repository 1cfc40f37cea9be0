package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"campaignScope/internal/chain"
	"campaignScope/internal/config"
	"campaignScope/internal/token"
)

func runMint(cmd *cobra.Command, args []string) error {
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

	contractStr, _ := cmd.Flags().GetString("contract")
	if !common.IsHexAddress(contractStr) {
		return fmt.Errorf("invalid contract address: %s", contractStr)
	}
	contract := common.HexToAddress(contractStr)
	txHash := common.HexToHash(args[0])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	receipt, err := chainClient.TransactionReceipt(ctx, txHash)
	if err != nil {
		return fmt.Errorf("fetch receipt %s: %w", txHash.Hex(), err)
	}

	result, err := token.ParseMintReceipt(receipt.Logs, contract)
	if err != nil {
		return err
	}

	logger.Info("mint recovered",
		zap.String("token_id", result.TokenID),
		zap.String("to", result.To))
	fmt.Printf("token %s minted to %s\n", result.TokenID, result.To)

	uri, err := token.FetchTokenURI(ctx, chainClient, contract, result.TokenID)
	if err != nil {
		logger.Debug("token uri lookup failed", zap.Error(err))
		return nil
	}

	if meta, ok := token.FetchMetadata(ctx, http.DefaultClient, uri, cfg.IPFSGateway, logger); ok {
		fmt.Printf("metadata: %s (%s)\n", meta.Name, meta.Description)
	}
	return nil
}
