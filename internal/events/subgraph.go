package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"campaignScope/internal/metrics"
	"campaignScope/internal/model"
)

// subgraphMaxRows caps every subgraph query.
const subgraphMaxRows = 1000

// SubgraphSource retrieves already-decoded, pre-sorted event rows from an
// indexed dataset behind a GraphQL endpoint.
type SubgraphSource struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewSubgraphSource builds a subgraph source.
func NewSubgraphSource(url string, logger *zap.Logger) *SubgraphSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubgraphSource{url: url, client: &http.Client{}, logger: logger}
}

// Name identifies the strategy.
func (s *SubgraphSource) Name() string { return "subgraph" }

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type subgraphRow struct {
	ID              string `json:"id"`
	Actor           string `json:"actor"`
	From            string `json:"from"`
	To              string `json:"to"`
	Amount          string `json:"amount"`
	TierIndex       string `json:"tierIndex"`
	TokenID         string `json:"tokenId"`
	BlockNumber     string `json:"blockNumber"`
	Timestamp       string `json:"timestamp"`
	TransactionHash string `json:"transactionHash"`
	LogIndex        string `json:"logIndex"`
}

// Events queries the index. Entity scope is one filtered, ordered, capped
// query. Participant scope needs two (sender and receiver variants) merged
// and deduplicated client-side: a single address-equality filter cannot
// express "from OR to" in this query model.
func (s *SubgraphSource) Events(ctx context.Context, q Query) ([]model.Event, error) {
	metrics.Fetches(s.Name())

	if s.url == "" {
		return nil, &ConfigError{Field: "subgraph url"}
	}

	collection, ok := subgraphCollections[q.Kind]
	if !ok {
		return nil, fmt.Errorf("no subgraph collection for event kind %s", q.Kind)
	}

	if q.Account == (common.Address{}) {
		rows, err := s.queryRows(ctx, entityQuery(collection), map[string]interface{}{
			"campaign": strings.ToLower(q.Campaign.Hex()),
			"first":    subgraphMaxRows,
		}, collection)
		if err != nil {
			return nil, err
		}
		return rowsToEvents(q.Kind, q.Campaign.Hex(), rows)
	}

	account := strings.ToLower(q.Account.Hex())
	var sent, received []subgraphRow

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		sent, err = s.queryRows(groupCtx, participantQuery(collection, "from"), map[string]interface{}{
			"campaign": strings.ToLower(q.Campaign.Hex()),
			"account":  account,
			"first":    subgraphMaxRows,
		}, collection)
		return err
	})
	group.Go(func() error {
		var err error
		received, err = s.queryRows(groupCtx, participantQuery(collection, "to"), map[string]interface{}{
			"campaign": strings.ToLower(q.Campaign.Hex()),
			"account":  account,
			"first":    subgraphMaxRows,
		}, collection)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	merged, err := rowsToEvents(q.Kind, q.Campaign.Hex(), append(sent, received...))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(merged))
	deduped := merged[:0]
	for _, event := range merged {
		if _, ok := seen[event.ID()]; ok {
			continue
		}
		seen[event.ID()] = struct{}{}
		deduped = append(deduped, event)
	}

	sortDescending(deduped)
	return deduped, nil
}

var subgraphCollections = map[model.EventKind]string{
	model.KindFunded:     "fundedEvents",
	model.KindTierFunded: "tierFundedEvents",
	model.KindWithdrawal: "withdrawalEvents",
	model.KindRefund:     "refundEvents",
	model.KindPurchase:   "purchaseEvents",
	model.KindVote:       "voteEvents",
	model.KindTransfer:   "transfers",
}

const subgraphRowFields = `
      id
      actor
      from
      to
      amount
      tierIndex
      tokenId
      blockNumber
      timestamp
      transactionHash
      logIndex`

func entityQuery(collection string) string {
	return fmt.Sprintf(`query($campaign: String!, $first: Int!) {
  %s(where: {campaign: $campaign}, orderBy: timestamp, orderDirection: desc, first: $first) {%s
  }
}`, collection, subgraphRowFields)
}

func participantQuery(collection, field string) string {
	return fmt.Sprintf(`query($campaign: String!, $account: String!, $first: Int!) {
  %s(where: {campaign: $campaign, %s: $account}, orderBy: timestamp, orderDirection: desc, first: $first) {%s
  }
}`, collection, field, subgraphRowFields)
}

func (s *SubgraphSource) queryRows(ctx context.Context, query string, variables map[string]interface{}, collection string) ([]subgraphRow, error) {
	payload, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subgraph request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read subgraph response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("subgraph status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   map[string]json.RawMessage `json:"data"`
		Errors []graphQLError             `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode subgraph envelope: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("subgraph error: %s", envelope.Errors[0].Message)
	}

	raw, ok := envelope.Data[collection]
	if !ok {
		return nil, nil
	}
	var rows []subgraphRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode subgraph rows: %w", err)
	}
	return rows, nil
}

func rowsToEvents(kind model.EventKind, campaign string, rows []subgraphRow) ([]model.Event, error) {
	out := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		event, err := rowToEvent(kind, campaign, row)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, nil
}

func rowToEvent(kind model.EventKind, campaign string, row subgraphRow) (model.Event, error) {
	blockNumber, err := strconv.ParseUint(row.BlockNumber, 10, 64)
	if err != nil {
		return model.Event{}, fmt.Errorf("subgraph block number %q: %w", row.BlockNumber, err)
	}
	timestamp, err := strconv.ParseUint(row.Timestamp, 10, 64)
	if err != nil {
		return model.Event{}, fmt.Errorf("subgraph timestamp %q: %w", row.Timestamp, err)
	}
	var logIndex uint64
	if row.LogIndex != "" {
		logIndex, err = strconv.ParseUint(row.LogIndex, 10, 64)
		if err != nil {
			return model.Event{}, fmt.Errorf("subgraph log index %q: %w", row.LogIndex, err)
		}
	}

	event := model.Event{
		Kind:        kind,
		Campaign:    campaign,
		Actor:       row.Actor,
		Amount:      row.Amount,
		TokenID:     row.TokenID,
		BlockNumber: blockNumber,
		TxHash:      row.TransactionHash,
		LogIndex:    logIndex,
		Timestamp:   timestamp,
	}
	if event.Actor == "" {
		event.Actor = row.To
	}
	if row.TierIndex != "" {
		tier, err := strconv.ParseUint(row.TierIndex, 10, 64)
		if err != nil {
			return model.Event{}, fmt.Errorf("subgraph tier index %q: %w", row.TierIndex, err)
		}
		event.TierIndex = &tier
	}
	return event, nil
}
