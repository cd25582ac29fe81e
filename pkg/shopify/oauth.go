package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var ErrEmptyAccessToken = errors.New("shopify token exchange returned empty access_token")

// ExchangeError reports a non-2xx answer from the shop's access_token endpoint.
type ExchangeError struct {
	Shop       string
	StatusCode int
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("shopify token exchange failed: shop=%s status=%d", e.Shop, e.StatusCode)
}

// OAuthExchanger trades an authorization code for an access token.
// A nil HTTPClient means http.DefaultClient; no timeout is added on top of it.
type OAuthExchanger struct {
	HTTPClient *http.Client
	APIKey     string
	APISecret  string
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// AccessToken is what the token endpoint hands back.
type AccessToken struct {
	Token string
	Scope string
}

func (o OAuthExchanger) ExchangeCodeForToken(ctx context.Context, shopDomain, code string) (AccessToken, error) {
	client := o.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", o.APIKey)
	form.Set("client_secret", o.APISecret)
	body := form.Encode()

	u := fmt.Sprintf("https://%s/admin/oauth/access_token", shopDomain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(body))
	if err != nil {
		return AccessToken{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))

	resp, err := client.Do(req)
	if err != nil {
		return AccessToken{}, fmt.Errorf("shopify token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return AccessToken{}, &ExchangeError{Shop: shopDomain, StatusCode: resp.StatusCode}
	}

	var r accessTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return AccessToken{}, fmt.Errorf("decode shopify token response: %w", err)
	}
	if r.AccessToken == "" {
		return AccessToken{}, ErrEmptyAccessToken
	}
	return AccessToken{Token: r.AccessToken, Scope: r.Scope}, nil
}
