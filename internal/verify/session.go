package verify

import (
	"net/http"
	"net/url"

	"github.com/capsule-corp/now-shopify-auth/internal/auth"
)

// Routes are the two places an unauthenticated request can be sent.
type Routes struct {
	// AuthRoute starts OAuth for a known shop; "?shop=<shop>" is appended.
	AuthRoute string
	// FallbackRoute is used when no shop is known, usually a shop-entry page.
	FallbackRoute string
}

// AuthTarget resolves where RedirectToAuth goes. A shop counts as known only when
// it is a non-empty string.
func (rt Routes) AuthTarget(shop string) string {
	if shop == "" {
		return rt.FallbackRoute
	}
	return rt.AuthRoute + "?" + url.Values{"shop": {shop}}.Encode()
}

func RedirectToAuth(w http.ResponseWriter, r *http.Request, shop string, routes Routes) {
	http.Redirect(w, r, routes.AuthTarget(shop), http.StatusFound)
}

// ClearSession expires the app's session cookies.
func ClearSession(w http.ResponseWriter, cookies auth.CookieStore) {
	cookies.Destroy(w, auth.ShopSettingsIDCookie)
	cookies.Destroy(w, auth.ShopOriginCookie)
	cookies.Destroy(w, auth.ShopifyTokenCookie)
}

// LoginAgain forces re-authentication: session cookies are dropped and the browser
// is sent back through OAuth.
func LoginAgain(w http.ResponseWriter, r *http.Request, cookies auth.CookieStore, shop string, routes Routes) {
	ClearSession(w, cookies)
	RedirectToAuth(w, r, shop, routes)
}
