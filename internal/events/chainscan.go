package events

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"campaignScope/internal/metrics"
	"campaignScope/internal/model"
)

// ChainReader captures the subset of the chain client the scanner uses.
type ChainReader interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
}

// ScanConfig bounds a backward chain scan.
type ScanConfig struct {
	// Window is the block span of one getLogs query.
	Window uint64
	// Ceiling caps the cumulative number of scanned blocks.
	Ceiling uint64
	// Delay is the pause between windows, easing provider rate limits.
	Delay time.Duration
	// MaxRetries and BaseDelay drive the rate-limit retry policy.
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultScanConfig mirrors the bounds used by the hosted front end.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Window:     1000,
		Ceiling:    50000,
		Delay:      200 * time.Millisecond,
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
	}
}

// ChainScanSource retrieves history by walking the chain backward from the
// head in fixed windows until enough events are found, the scan ceiling is
// hit, or genesis is reached.
type ChainScanSource struct {
	chain  ChainReader
	dec    *Decoder
	cfg    ScanConfig
	logger *zap.Logger
}

// NewChainScanSource builds a chain-scan source.
func NewChainScanSource(chain ChainReader, dec *Decoder, cfg ScanConfig, logger *zap.Logger) *ChainScanSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Window == 0 {
		cfg = DefaultScanConfig()
	}
	return &ChainScanSource{chain: chain, dec: dec, cfg: cfg, logger: logger}
}

// Name identifies the strategy.
func (s *ChainScanSource) Name() string { return "chain-scan" }

// Events walks block windows head-to-genesis collecting matching logs.
// Windows are strictly sequential: timestamps for one window are fully
// resolved before the next query, because the stopping condition depends
// on cumulative results.
func (s *ChainScanSource) Events(ctx context.Context, q Query) ([]model.Event, error) {
	metrics.Fetches(s.Name())

	topic, err := s.dec.Topic(q.Kind)
	if err != nil {
		return nil, err
	}

	head, err := s.chain.LatestBlockNumber(ctx)
	if err != nil {
		return nil, err
	}

	target := q.Target
	if target <= 0 {
		target = 10
	}

	retry := RetryPolicy{
		MaxRetries: s.cfg.MaxRetries,
		BaseDelay:  s.cfg.BaseDelay,
		Retryable:  IsRateLimited,
	}

	var (
		collected []model.Event
		scanned   uint64
		toBlock   = head
	)

	for {
		fromBlock := uint64(0)
		if toBlock >= s.cfg.Window {
			fromBlock = toBlock - s.cfg.Window + 1
		}

		var logs []types.Log
		err := retry.Do(ctx, func(ctx context.Context) error {
			var err error
			logs, err = s.chain.FilterLogs(ctx, fromBlock, toBlock, []common.Address{q.Campaign}, []common.Hash{topic})
			if err != nil {
				s.logger.Warn("filter logs failed",
					zap.Error(err),
					zap.Uint64("from", fromBlock),
					zap.Uint64("to", toBlock))
				metrics.Retries()
			}
			return err
		})
		if err != nil {
			return nil, err
		}
		metrics.ScanWindows()

		if len(logs) > 0 {
			timestamps, err := s.resolveTimestamps(ctx, logs)
			if err != nil {
				return nil, err
			}
			for _, lg := range logs {
				event, err := s.dec.Decode(lg, timestamps[lg.BlockNumber])
				if err != nil {
					return nil, err
				}
				collected = append(collected, event)
			}
		}

		scanned += toBlock - fromBlock + 1
		s.logger.Debug("window scanned",
			zap.Uint64("from", fromBlock),
			zap.Uint64("to", toBlock),
			zap.Int("events", len(collected)),
			zap.Uint64("scanned", scanned))

		if len(collected) >= target || scanned >= s.cfg.Ceiling || fromBlock == 0 {
			break
		}

		toBlock = fromBlock - 1

		if s.cfg.Delay > 0 {
			timer := time.NewTimer(s.cfg.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	sortDescending(collected)
	if len(collected) > target {
		collected = collected[:target]
	}
	return collected, nil
}

// resolveTimestamps fetches each distinct containing block once.
func (s *ChainScanSource) resolveTimestamps(ctx context.Context, logs []types.Log) (map[uint64]uint64, error) {
	out := make(map[uint64]uint64)
	for _, lg := range logs {
		if _, ok := out[lg.BlockNumber]; ok {
			continue
		}
		ts, err := s.chain.BlockTimestamp(ctx, lg.BlockNumber)
		if err != nil {
			return nil, err
		}
		out[lg.BlockNumber] = ts
	}
	return out, nil
}
