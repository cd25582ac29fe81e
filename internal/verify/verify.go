package verify

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/capsule-corp/now-shopify-auth/internal/auth"
	"github.com/capsule-corp/now-shopify-auth/pkg/shopify"
)

// Access says how the verifier can reach the platform.
type Access int

const (
	// DirectAccess probes the shop's admin API with the token itself.
	DirectAccess Access = iota
	// DelegatedAccess asks the app's own VerifyTokenURL, forwarding the
	// caller's cookies.
	DelegatedAccess
)

func (a Access) String() string {
	if a == DelegatedAccess {
		return "delegated"
	}
	return "direct"
}

type Verifier struct {
	Routes         Routes
	VerifyTokenURL string
	Access         Access

	// ValidShop decides whether a shopOrigin cookie may be used as an API host.
	// Nil accepts only "<name>.myshopify.com".
	ValidShop func(shop string) bool

	Cookies    auth.CookieStore
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (v Verifier) cookies() auth.CookieStore {
	if v.Cookies == nil {
		return auth.HTTPCookies{}
	}
	return v.Cookies
}

var defaultShopRe = auth.ShopDomainRegexp(auth.DefaultMyShopifyDomain)

func (v Verifier) validShop(shop string) bool {
	if shop == "" {
		return false
	}
	if v.ValidShop == nil {
		return defaultShopRe.MatchString(shop)
	}
	return v.ValidShop(shop)
}

func (v Verifier) logger() *slog.Logger {
	if v.Logger == nil {
		return slog.Default()
	}
	return v.Logger
}

func (v Verifier) httpClient() *http.Client {
	if v.HTTPClient == nil {
		return http.DefaultClient
	}
	return v.HTTPClient
}

// VerifyToken re-checks a stored token. It reports true when it wrote a redirect
// to auth, in which case the caller must stop handling the request.
//
// With both values present the token is probed and only an explicit 401 sends the
// user back to auth. Without them the test cookie is set and the user always goes
// to auth. A shopOrigin that fails ValidShop counts as absent and is never contacted.
func (v Verifier) VerifyToken(w http.ResponseWriter, r *http.Request, shopOrigin, shopifyToken string) bool {
	cookies := v.cookies()
	if shopOrigin != "" && !v.validShop(shopOrigin) {
		v.logger().WarnContext(r.Context(), "ignoring invalid shopOrigin cookie", "shopOrigin", shopOrigin)
		shopOrigin = ""
	}
	if shopOrigin != "" && shopifyToken != "" {
		cookies.Destroy(w, auth.TopLevelOAuthCookie)

		status, err := v.probe(r, shopOrigin, shopifyToken)
		if err != nil {
			v.logger().WarnContext(r.Context(), "token probe failed", "shopOrigin", shopOrigin, "access", v.Access.String(), "error", err)
			tokenChecks.WithLabelValues(v.Access.String(), outcomeUnreachable).Inc()
			RedirectToAuth(w, r, shopOrigin, v.Routes)
			return true
		}
		if status == http.StatusUnauthorized {
			v.logger().InfoContext(r.Context(), "token rejected, restarting auth", "shopOrigin", shopOrigin)
			tokenChecks.WithLabelValues(v.Access.String(), outcomeRejected).Inc()
			RedirectToAuth(w, r, shopOrigin, v.Routes)
			return true
		}
		tokenChecks.WithLabelValues(v.Access.String(), outcomeValid).Inc()
		return false
	}

	tokenChecks.WithLabelValues(v.Access.String(), outcomeNoSession).Inc()
	cookies.Set(w, auth.TestCookie, "1")
	RedirectToAuth(w, r, shopOrigin, v.Routes)
	return true
}

func (v Verifier) probe(r *http.Request, shop, token string) (int, error) {
	switch v.Access {
	case DelegatedAccess:
		return v.probeDelegated(r)
	default:
		c := shopify.Client{HTTPClient: v.HTTPClient, ShopDomain: shop, AccessToken: token}
		return c.ProbeToken(r.Context())
	}
}

// probeDelegated calls VerifyTokenURL with the incoming request's cookies. A
// relative URL is resolved against the request's own host.
func (v Verifier) probeDelegated(r *http.Request) (int, error) {
	target, err := resolveVerifyURL(r, v.VerifyTokenURL)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	for _, c := range r.Cookies() {
		req.AddCookie(c)
	}

	resp, err := v.httpClient().Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func resolveVerifyURL(r *http.Request, raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("verify token url not configured")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("verify token url: %w", err)
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	scheme := "https"
	if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
		scheme = "http"
	}
	base := &url.URL{Scheme: scheme, Host: r.Host}
	return base.ResolveReference(u).String(), nil
}

// VerifyRequest guards a route group with VerifyToken using the shopOrigin and
// shopifyToken session cookies.
func VerifyRequest(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookies := v.cookies()
			shop := cookies.Get(r, auth.ShopOriginCookie)
			token := cookies.Get(r, auth.ShopifyTokenCookie)
			if v.VerifyToken(w, r, shop, token) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
