package auth

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
)

type tokenEndpoint struct {
	srv    *httptest.Server
	client *http.Client
	shop   string
	calls  atomic.Int32
}

// newTokenEndpoint serves https://test-shop.myshopify.com/admin/oauth/access_token
// through te.client.
func newTokenEndpoint(t *testing.T, status int, body string) *tokenEndpoint {
	t.Helper()
	te := &tokenEndpoint{shop: "test-shop.myshopify.com"}
	te.srv = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		te.calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(te.srv.Close)
	te.client = shopClient(te.srv)
	return te
}

// shopClient sends every request to srv whatever the URL host, so shop domains
// that pass validation can be served locally.
func shopClient(srv *httptest.Server) *http.Client {
	tr := srv.Client().Transport.(*http.Transport).Clone()
	addr := srv.Listener.Addr().String()
	tr.DialContext = func(ctx context.Context, network, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, network, addr)
	}
	tr.TLSClientConfig.ServerName = "example.com"
	return &http.Client{Transport: tr}
}

func signedCallback(shop, state string) string {
	q := url.Values{
		"code":      {"auth-code"},
		"shop":      {shop},
		"state":     {state},
		"timestamp": {"1700000000"},
	}
	q.Set("hmac", SignQuery(testSecret, q))
	return "/auth/callback?" + q.Encode()
}

func nonceCookie(v string) *http.Cookie { return &http.Cookie{Name: NonceCookie, Value: v} }

func TestOAuthCallback_Success(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"access_token":"shpat_abc","scope":"read_products"}`)
	var got *AfterAuthParams
	a := newTestAuth(t, func(o *OAuthStartOptions) {
		o.HTTPClient = te.client
		o.AfterAuth = func(w http.ResponseWriter, r *http.Request, p AfterAuthParams) {
			got = &p
			w.WriteHeader(http.StatusNoContent)
		}
	})

	rec := get(a.OAuthCallback, signedCallback(te.shop, "n1"), nonceCookie("n1"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected afterAuth response, got %d %s", rec.Code, rec.Body.String())
	}
	if got == nil || got.ShopOrigin != te.shop || got.ShopifyToken != "shpat_abc" {
		t.Fatalf("unexpected afterAuth params %+v", got)
	}
	if c := responseCookie(rec, NonceCookie); c == nil || c.MaxAge >= 0 {
		t.Fatalf("nonce not consumed: %+v", c)
	}
	if c := responseCookie(rec, TopLevelOAuthCookie); c == nil || c.MaxAge >= 0 {
		t.Fatalf("top level marker not cleared: %+v", c)
	}
}

func TestOAuthCallback_NonceMismatch(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"access_token":"x"}`)
	a := newTestAuth(t, func(o *OAuthStartOptions) { o.HTTPClient = te.client })

	cases := map[string]struct {
		target string
		cookie *http.Cookie
	}{
		"different":      {signedCallback(te.shop, "n1"), nonceCookie("n2")},
		"no cookie":      {signedCallback(te.shop, "n1"), nil},
		"no state":       {signedCallback(te.shop, ""), nonceCookie("n1")},
		"both missing":   {signedCallback(te.shop, ""), nil},
		"bad hmac too":   {"/auth/callback?shop=" + te.shop + "&state=n1&hmac=nope", nonceCookie("n2")},
		"no shop either": {"/auth/callback?state=n1", nonceCookie("n2")},
	}
	for name, c := range cases {
		for i := 0; i < 2; i++ {
			var cookies []*http.Cookie
			if c.cookie != nil {
				cookies = append(cookies, c.cookie)
			}
			rec := get(a.OAuthCallback, c.target, cookies...)
			if rec.Code != http.StatusForbidden {
				t.Fatalf("%s: expected 403, got %d", name, rec.Code)
			}
			if body := decodeError(t, rec); body.ErrorMessage != NonceMatchFailed {
				t.Fatalf("%s: unexpected body %+v", name, body)
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Fatalf("%s: rejection must not touch cookies", name)
			}
		}
	}
	if n := te.calls.Load(); n != 0 {
		t.Fatalf("token endpoint called %d times", n)
	}
}

func TestOAuthCallback_MissingShop(t *testing.T) {
	a := newTestAuth(t, nil)
	rec := get(a.OAuthCallback, "/auth/callback?state=n1&code=c&hmac=x", nonceCookie("n1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.ErrorMessage != ShopParamMissing || body.ShopOrigin != "" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestOAuthCallback_ShopOutsideMyShopifyDomain(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"access_token":"x"}`)
	a := newTestAuth(t, func(o *OAuthStartOptions) { o.HTTPClient = te.client })

	for _, shop := range []string{"127.0.0.1:8443", "evil.example.com", "test-shop.myshopify.com.evil.io"} {
		// Correctly signed, so only the domain check can stop the exchange.
		rec := get(a.OAuthCallback, signedCallback(shop, "n1"), nonceCookie("n1"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", shop, rec.Code)
		}
		if body := decodeError(t, rec); body.ErrorMessage != ShopParamMissing || body.ShopOrigin != shop {
			t.Fatalf("%s: unexpected body %+v", shop, body)
		}
	}
	if n := te.calls.Load(); n != 0 {
		t.Fatalf("token endpoint called %d times", n)
	}
}

func TestOAuthCallback_InvalidHmac(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"access_token":"x"}`)
	a := newTestAuth(t, func(o *OAuthStartOptions) { o.HTTPClient = te.client })

	target := signedCallback(te.shop, "n1") + "&extra=tampered"
	rec := get(a.OAuthCallback, target, nonceCookie("n1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.ErrorMessage != InvalidHmac || body.ShopOrigin != te.shop {
		t.Fatalf("unexpected body %+v", body)
	}
	if te.calls.Load() != 0 {
		t.Fatalf("token endpoint must not be called")
	}
}

func TestOAuthCallback_TokenEndpointFailure(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusInternalServerError, `oops`)
	called := false
	a := newTestAuth(t, func(o *OAuthStartOptions) {
		o.HTTPClient = te.client
		o.AfterAuth = func(http.ResponseWriter, *http.Request, AfterAuthParams) { called = true }
	})

	rec := get(a.OAuthCallback, signedCallback(te.shop, "n1"), nonceCookie("n1"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.ErrorMessage != AccessTokenFetchFailure {
		t.Fatalf("unexpected body %+v", body)
	}
	if called {
		t.Fatalf("afterAuth must not run after a failed exchange")
	}
}

func TestOAuthCallback_UnreachableShop(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{}`)
	client := te.client
	shop := te.shop
	te.srv.Close()

	a := newTestAuth(t, func(o *OAuthStartOptions) { o.HTTPClient = client })
	rec := get(a.OAuthCallback, signedCallback(shop, "n1"), nonceCookie("n1"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestOAuthCallback_NoHook(t *testing.T) {
	te := newTokenEndpoint(t, http.StatusOK, `{"access_token":"shpat_abc"}`)
	a := newTestAuth(t, func(o *OAuthStartOptions) { o.HTTPClient = te.client })

	rec := get(a.OAuthCallback, signedCallback(te.shop, "n1"), nonceCookie("n1"))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 200, got %d %q", rec.Code, rec.Body.String())
	}
}
