package token

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// metadataTimeout caps the decorative metadata fetch. Metadata is not on
// the critical path, so a slow gateway degrades to "no metadata" instead
// of an error.
const metadataTimeout = 5 * time.Second

// Metadata is the common token-metadata document shape.
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// FetchMetadata loads a token's metadata document from its URI, rewriting
// IPFS schemes through the gateway. It soft-fails: any error or timeout
// returns the zero value and false.
func FetchMetadata(ctx context.Context, client *http.Client, uri, gateway string, logger *zap.Logger) (Metadata, bool) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}

	target := RewriteIPFS(uri, gateway)
	if target == "" {
		return Metadata{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		logger.Debug("metadata request build failed", zap.String("uri", uri), zap.Error(err))
		return Metadata{}, false
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.Debug("metadata fetch failed", zap.String("uri", uri), zap.Error(err))
		return Metadata{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Debug("metadata fetch status", zap.String("uri", uri), zap.Int("status", resp.StatusCode))
		return Metadata{}, false
	}

	var meta Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		logger.Debug("metadata decode failed", zap.String("uri", uri), zap.Error(err))
		return Metadata{}, false
	}

	meta.Image = RewriteIPFS(meta.Image, gateway)
	return meta, true
}
