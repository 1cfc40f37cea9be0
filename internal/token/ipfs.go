package token

import "strings"

// DefaultGateway serves ipfs content over plain HTTP.
const DefaultGateway = "https://ipfs.io/ipfs/"

// RewriteIPFS turns an ipfs://<hash> (or bare ipfs/<hash>) URI into a
// gateway URL. Non-IPFS URIs pass through unchanged; empty input yields
// empty output.
func RewriteIPFS(uri, gateway string) string {
	if uri == "" {
		return ""
	}
	if gateway == "" {
		gateway = DefaultGateway
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}

	switch {
	case strings.HasPrefix(uri, "ipfs://"):
		return gateway + strings.TrimPrefix(uri, "ipfs://")
	case strings.HasPrefix(uri, "ipfs/"):
		return gateway + strings.TrimPrefix(uri, "ipfs/")
	default:
		return uri
	}
}
