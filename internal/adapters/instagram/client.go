package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
)

// Client refreshes long-lived Instagram Graph API tokens.
type Client struct {
	graphURL   string
	httpClient *http.Client
}

var _ portssvc.TokenRefresher = (*Client)(nil)

func NewClient(graphURL string, httpClient *http.Client) *Client {
	return &Client{graphURL: strings.TrimRight(graphURL, "/"), httpClient: httpClient}
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// RefreshToken exchanges a still-valid long-lived token for a new one.
func (c *Client) RefreshToken(ctx context.Context, accessToken string) (*domain.RefreshedToken, error) {
	q := url.Values{}
	q.Set("grant_type", "ig_refresh_token")
	q.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.graphURL+"/refresh_access_token?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build token refresh request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the token; keep it out of the error.
		if ue, ok := err.(*url.Error); ok {
			err = ue.Err
		}
		return nil, apperrors.NewRemoteError("instagram refresh_access_token", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.NewRemoteError("instagram refresh_access_token", err)
	}
	if resp.StatusCode >= 300 {
		var ge graphError
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if json.Unmarshal(raw, &ge) == nil && ge.Error.Message != "" {
			msg = fmt.Sprintf("status %d: %s (code %d)", resp.StatusCode, ge.Error.Message, ge.Error.Code)
		}
		return nil, apperrors.NewRemoteError("instagram refresh_access_token", fmt.Errorf("%s", msg))
	}

	var out refreshResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperrors.NewRemoteError("instagram refresh_access_token", fmt.Errorf("decoding response: %w", err))
	}
	if out.AccessToken == "" || out.ExpiresIn <= 0 {
		return nil, apperrors.NewRemoteError("instagram refresh_access_token", fmt.Errorf("response missing token or expiry"))
	}
	return &domain.RefreshedToken{
		AccessToken: out.AccessToken,
		ExpiresIn:   time.Duration(out.ExpiresIn) * time.Second,
	}, nil
}
