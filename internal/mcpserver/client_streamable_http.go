package mcpserver

import (
	"net/http"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
)

// NewStreamableHTTPExecutor creates an executor that speaks streamable HTTP
// to url. Nothing is dialled until Connect.
func NewStreamableHTTPExecutor(url string, opts ...RemoteOption) *RemoteExecutor {
	return newRemoteExecutor("StreamableHTTP", dialStreamableHTTP, url, opts...)
}

func dialStreamableHTTP(url, token string, httpClient *http.Client) (*client.Client, error) {
	opts := []transport.StreamableHTTPCOption{
		transport.WithHTTPHeaders(bearerHeaders(token)),
	}
	if httpClient != nil {
		opts = append(opts, transport.WithHTTPBasicClient(httpClient))
	}
	return client.NewStreamableHttpClient(url, opts...)
}

func bearerHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
