package source

import (
	"github.com/kurihiro0119/repo-analyzer/internal/config"
	"github.com/kurihiro0119/repo-analyzer/pkg/client"
)

// proxy reads everything from the analysis service
type proxy struct {
	*client.Client
}

var _ Source = (*proxy)(nil)

// NewProxy creates a source backed by the analysis service client
func NewProxy(c *client.Client) Source {
	return &proxy{Client: c}
}

func (p *proxy) Name() string { return config.SourceProxy }
