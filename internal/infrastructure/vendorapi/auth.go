package vendorapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Audience     string `json:"audience"`
	GrantType    string `json:"grant_type"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Authenticate exchanges the client credentials for a bearer token and keeps
// it on the client for subsequent calls. The token is fetched once per run,
// before any worker starts; a failure here is fatal to the run.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	payload, err := json.Marshal(tokenRequest{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		Audience:     c.config.Audience,
		GrantType:    "client_credentials",
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	status, body, err := c.doRequest(ctx, http.MethodPost, c.config.AuthURL, payload, false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d from token endpoint", ErrAuthFailed, status)
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: token response is not JSON: %v", ErrAuthFailed, err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: token response has no access_token", ErrAuthFailed)
	}

	c.token = "Bearer " + resp.AccessToken
	c.logger.Info("authenticated with vendor", zap.String("token_type", resp.TokenType))
	return c.token, nil
}
