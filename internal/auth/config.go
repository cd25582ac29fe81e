package auth

import (
	"log/slog"
	"net/http"
)

type AccessMode string

const (
	AccessModeOnline  AccessMode = "online"
	AccessModeOffline AccessMode = "offline"
)

const (
	DefaultMyShopifyDomain            = "myshopify.com"
	DefaultAccessMode      AccessMode = AccessModeOnline
)

// AfterAuthParams is what a successful callback hands to the AfterAuth hook.
type AfterAuthParams struct {
	ShopOrigin   string
	ShopifyToken string
	Scope        string
}

// AfterAuthFunc persists the token and writes the response for a completed install.
type AfterAuthFunc func(w http.ResponseWriter, r *http.Request, p AfterAuthParams)

type AuthConfig struct {
	Secret          string
	APIKey          string
	MyShopifyDomain string
	AccessMode      AccessMode
	AfterAuth       AfterAuthFunc
}

type OAuthStartOptions struct {
	AuthConfig

	Prefix string
	Scopes []string
	// AppURL is the app host without scheme, e.g. "app.example.com".
	AppURL string

	// TopLevelBounce makes <prefix>/auth route through the enable-cookies and
	// top-level OAuth pages before starting OAuth.
	TopLevelBounce bool

	Cookies    CookieStore
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (o OAuthStartOptions) withDefaults() OAuthStartOptions {
	if o.MyShopifyDomain == "" {
		o.MyShopifyDomain = DefaultMyShopifyDomain
	}
	if o.AccessMode == "" {
		o.AccessMode = DefaultAccessMode
	}
	if o.Scopes == nil {
		o.Scopes = []string{}
	}
	if o.Cookies == nil {
		o.Cookies = HTTPCookies{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
