package mcpserver

import (
	"net/http"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
)

// NewSSEExecutor creates an executor that uses the legacy SSE transport,
// for remote servers that only expose an /sse endpoint.
func NewSSEExecutor(url string, opts ...RemoteOption) *RemoteExecutor {
	return newRemoteExecutor("SSE", dialSSE, url, opts...)
}

func dialSSE(url, token string, httpClient *http.Client) (*client.Client, error) {
	opts := []transport.ClientOption{
		transport.WithHeaders(bearerHeaders(token)),
	}
	if httpClient != nil {
		opts = append(opts, transport.WithHTTPClient(httpClient))
	}
	return client.NewSSEMCPClient(url, opts...)
}
