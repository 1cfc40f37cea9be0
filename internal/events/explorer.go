package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"campaignScope/internal/metrics"
	"campaignScope/internal/model"
)

// ExplorerSource retrieves the full event history in one call against a
// block-explorer log-search endpoint and decodes the results locally.
type ExplorerSource struct {
	endpoint string
	apiKey   string
	chainID  uint64
	client   *http.Client
	dec      *Decoder
	logger   *zap.Logger
}

// NewExplorerSource builds an explorer-API source.
func NewExplorerSource(endpoint, apiKey string, chainID uint64, dec *Decoder, logger *zap.Logger) *ExplorerSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExplorerSource{
		endpoint: endpoint,
		apiKey:   apiKey,
		chainID:  chainID,
		client:   &http.Client{},
		dec:      dec,
		logger:   logger,
	}
}

// Name identifies the strategy.
func (s *ExplorerSource) Name() string { return "explorer" }

type explorerEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type explorerLogRow struct {
	Address         string   `json:"address"`
	Topics          []string `json:"topics"`
	Data            string   `json:"data"`
	BlockNumber     string   `json:"blockNumber"`
	TimeStamp       string   `json:"timeStamp"`
	TransactionHash string   `json:"transactionHash"`
	LogIndex        string   `json:"logIndex"`
}

// Events issues one getLogs request over the whole chain history and sorts
// the decoded set newest first. An explicit "No records found" response is
// an empty result, not an error.
func (s *ExplorerSource) Events(ctx context.Context, q Query) ([]model.Event, error) {
	metrics.Fetches(s.Name())

	if s.apiKey == "" {
		return nil, &ConfigError{Field: "explorer api key"}
	}
	if s.endpoint == "" {
		return nil, &ConfigError{Field: "explorer endpoint"}
	}

	topic, err := s.dec.Topic(q.Kind)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("chainid", strconv.FormatUint(s.chainID, 10))
	params.Set("module", "logs")
	params.Set("action", "getLogs")
	params.Set("address", q.Campaign.Hex())
	params.Set("topic0", topic.Hex())
	params.Set("fromBlock", "0")
	params.Set("toBlock", "latest")
	params.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explorer request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read explorer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explorer status %d", resp.StatusCode)
	}

	var envelope explorerEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode explorer envelope: %w", err)
	}

	if envelope.Status == "0" {
		if strings.EqualFold(envelope.Message, "No records found") {
			return []model.Event{}, nil
		}
		return nil, fmt.Errorf("explorer error: %s", envelope.Message)
	}

	var rows []explorerLogRow
	if err := json.Unmarshal(envelope.Result, &rows); err != nil {
		return nil, fmt.Errorf("decode explorer result: %w", err)
	}

	out := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		lg, ts, err := rowToLog(row)
		if err != nil {
			return nil, err
		}
		event, err := s.dec.Decode(lg, ts)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}

	sortDescending(out)
	return out, nil
}

func rowToLog(row explorerLogRow) (types.Log, uint64, error) {
	blockNumber, err := parseHexUint(row.BlockNumber)
	if err != nil {
		return types.Log{}, 0, fmt.Errorf("block number %q: %w", row.BlockNumber, err)
	}
	timestamp, err := parseHexUint(row.TimeStamp)
	if err != nil {
		return types.Log{}, 0, fmt.Errorf("timestamp %q: %w", row.TimeStamp, err)
	}
	logIndex, err := parseHexUint(row.LogIndex)
	if err != nil {
		return types.Log{}, 0, fmt.Errorf("log index %q: %w", row.LogIndex, err)
	}

	topics := make([]common.Hash, 0, len(row.Topics))
	for _, topic := range row.Topics {
		topics = append(topics, common.HexToHash(topic))
	}

	var data []byte
	if row.Data != "" && row.Data != "0x" {
		data, err = hexutil.Decode(row.Data)
		if err != nil {
			return types.Log{}, 0, fmt.Errorf("log data: %w", err)
		}
	}

	return types.Log{
		Address:     common.HexToAddress(row.Address),
		Topics:      topics,
		Data:        data,
		BlockNumber: blockNumber,
		TxHash:      common.HexToHash(row.TransactionHash),
		Index:       uint(logIndex),
	}, timestamp, nil
}

// parseHexUint parses explorer hex fields, treating empty values as zero.
func parseHexUint(s string) (uint64, error) {
	if s == "" || s == "0x" {
		return 0, nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 16, 64)
}
