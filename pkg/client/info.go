package client

import (
	"context"

	"github.com/rhaphazard/browserid/internal/api"
	"github.com/rhaphazard/browserid/internal/buildinfo"
)

// Info fetches the server's build information.
func (c *Client) Info(
	ctx context.Context,
) (*buildinfo.Info, string, error) {
	var info buildinfo.Info
	correlation, err := c.get(ctx, c.endpoint(api.AboutRoute), &info)
	return &info, correlation, err
}
