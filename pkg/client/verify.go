package client

import (
	"context"

	"github.com/rhaphazard/browserid/internal/api"
)

// Verify asks the server whether the assertion proves the principal
// authorized use of their identity for the given audience. A "failure"
// response is not an error: the server answered, the answer is no.
func (c *Client) Verify(
	ctx context.Context,
	assertion, audience string,
) (*api.VerifyResponse, string, error) {
	payload := api.VerifyPayload{
		Assertion: assertion,
		Audience:  audience,
	}

	var result api.VerifyResponse
	correlation, err := c.post(ctx, c.endpoint(api.VerifyRoute), payload, &result)
	if err != nil {
		return nil, correlation, err
	}
	return &result, correlation, nil
}
