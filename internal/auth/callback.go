package auth

import (
	"crypto/subtle"
	"net/http"
)

// OAuthCallback checks, in order, the nonce, the shop and the HMAC, then exchanges
// the code for a token and hands it to AfterAuth. The first failing check answers
// the request.
func (a *ShopifyAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	shop := query.Get("shop")
	state := query.Get("state")

	nonce := a.cookies.Get(r, NonceCookie)
	if state == "" || nonce == "" || subtle.ConstantTimeCompare([]byte(state), []byte(nonce)) != 1 {
		writeAuthError(w, r, a.log, NonceMatchFailed, shop)
		return
	}
	// The nonce is spent whatever happens next.
	a.cookies.Destroy(w, NonceCookie)
	a.cookies.Destroy(w, TopLevelOAuthCookie)

	// The shop becomes the token exchange host.
	if !a.ValidShop(shop) {
		writeAuthError(w, r, a.log, ShopParamMissing, shop)
		return
	}

	if !ValidateHMAC(query.Get("hmac"), a.opts.Secret, query) {
		writeAuthError(w, r, a.log, InvalidHmac, shop)
		return
	}

	token, err := a.exchanger.ExchangeCodeForToken(r.Context(), shop, query.Get("code"))
	if err != nil {
		writeAuthError(w, r, a.log, AccessTokenFetchFailure, shop, "error", err)
		return
	}

	a.log.InfoContext(r.Context(), "shopify auth complete", "shopOrigin", shop, "scope", token.Scope)
	oauthResults.WithLabelValues(resultCompleted).Inc()

	if a.opts.AfterAuth != nil {
		a.opts.AfterAuth(w, r, AfterAuthParams{
			ShopOrigin:   shop,
			ShopifyToken: token.Token,
			Scope:        token.Scope,
		})
	}
}
