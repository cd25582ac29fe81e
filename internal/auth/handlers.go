package auth

import (
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/capsule-corp/now-shopify-auth/pkg/shopify"
)

// ShopifyAuth holds the merged OAuth configuration. It keeps no per-request state,
// so one value serves every request and several apps can coexist in a process.
type ShopifyAuth struct {
	opts      OAuthStartOptions
	shopRe    *regexp.Regexp
	exchanger shopify.OAuthExchanger
	cookies   CookieStore
	log       *slog.Logger
	newNonce  func() (string, error)

	topLevelOAuth  TopLevelRedirect
	enableCookiesR TopLevelRedirect
}

func New(opts OAuthStartOptions) *ShopifyAuth {
	opts = opts.withDefaults()
	return &ShopifyAuth{
		opts:   opts,
		shopRe: ShopDomainRegexp(opts.MyShopifyDomain),
		exchanger: shopify.OAuthExchanger{
			HTTPClient: opts.HTTPClient,
			APIKey:     opts.APIKey,
			APISecret:  opts.Secret,
		},
		cookies:  opts.Cookies,
		log:      opts.Logger,
		newNonce: NewNonce,
		topLevelOAuth: TopLevelRedirect{
			APIKey: opts.APIKey,
			Path:   opts.Prefix + "/auth/inline",
			AppURL: opts.AppURL,
		},
		enableCookiesR: TopLevelRedirect{
			APIKey: opts.APIKey,
			Path:   opts.Prefix + "/auth/enable-cookies",
			AppURL: opts.AppURL,
		},
	}
}

func (a *ShopifyAuth) Options() OAuthStartOptions { return a.opts }

func (a *ShopifyAuth) Cookies() CookieStore { return a.cookies }

func (a *ShopifyAuth) StartPath() string { return a.opts.Prefix + "/auth" }

func (a *ShopifyAuth) CallbackPath() string { return a.opts.Prefix + "/auth/callback" }

// Mount registers the auth routes on r under the configured prefix.
func (a *ShopifyAuth) Mount(r chi.Router) {
	p := a.opts.Prefix
	r.Get(p+"/auth", a.Begin)
	r.Get(p+"/auth/inline", a.OAuthStart)
	r.Get(p+"/auth/enable-cookies", a.EnableCookies)
	r.Get(p+"/auth/callback", a.OAuthCallback)
}

// Begin is the <prefix>/auth entry point. Without TopLevelBounce it is OAuthStart.
// With it, a browser that has not proven cookie access is sent to the
// enable-cookies page, and one that has not left the iframe yet is marked and
// bounced top-level to <prefix>/auth/inline, which starts OAuth.
func (a *ShopifyAuth) Begin(w http.ResponseWriter, r *http.Request) {
	if a.opts.TopLevelBounce {
		if !HasCookieAccess(a.cookies, r) {
			a.EnableCookiesRedirect(w, r)
			return
		}
		if !ShouldPerformInlineOAuth(a.cookies, r) {
			a.TopLevelOAuthRedirect(w, r)
			return
		}
	}
	a.OAuthStart(w, r)
}
