package auth

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
)

// Both pages escape the admin iframe with App Bridge when framed and fall back to a
// plain navigation when already top-level.
var redirectionPage = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<script src="https://unpkg.com/@shopify/app-bridge@1"></script>
<script type="text/javascript">
document.addEventListener("DOMContentLoaded", function () {
  var redirectTo = {{.RedirectTo}};
  if (window.top === window.self) {
    window.location.href = redirectTo;
    return;
  }
  var AppBridge = window["app-bridge"];
  var app = AppBridge.default({ apiKey: {{.APIKey}}, shopOrigin: {{.ShopOrigin}} });
  var Redirect = AppBridge.actions.Redirect;
  Redirect.create(app).dispatch(Redirect.Action.REMOTE, redirectTo);
});
</script>
</head>
<body></body>
</html>
`))

var enableCookiesPage = template.Must(template.New("enable-cookies").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Enable cookies</title>
<script type="text/javascript">
function grantCookieAccess() {
  var redirectTo = {{.RedirectTo}};
  var proceed = function () {
    document.cookie = {{.TestCookie}} + "=1; path=/" + {{.CookieAttrs}};
    window.location.href = redirectTo;
  };
  if (document.hasStorageAccess) {
    document.requestStorageAccess().then(proceed, proceed);
  } else {
    proceed();
  }
}
</script>
</head>
<body>
<main>
<h1>Enable cookies</h1>
<p>{{.ShopOrigin}} needs cookies to sign you in to this app. Your browser blocks them inside the admin.</p>
<button type="button" onclick="grantCookieAccess()">Enable cookies</button>
</main>
</body>
</html>
`))

type redirectionData struct {
	APIKey      string
	ShopOrigin  string
	RedirectTo  string
	TestCookie  string
	CookieAttrs string
}

// TopLevelRedirect renders a page that navigates the top window to
// https://<AppURL><Path>?shop=<shop>.
type TopLevelRedirect struct {
	APIKey string
	Path   string
	AppURL string
}

func (t TopLevelRedirect) Target(shop string) string {
	return "https://" + t.AppURL + t.Path + "?" + url.Values{"shop": {shop}}.Encode()
}

func (t TopLevelRedirect) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	renderPage(w, redirectionPage, redirectionData{
		APIKey:     t.APIKey,
		ShopOrigin: shop,
		RedirectTo: t.Target(shop),
	})
}

// TopLevelOAuthRedirect marks the bounce with shopifyTopLevelOAuth and sends the
// top window back to <prefix>/auth/inline.
func (a *ShopifyAuth) TopLevelOAuthRedirect(w http.ResponseWriter, r *http.Request) {
	a.cookies.Set(w, TopLevelOAuthCookie, "1")
	a.topLevelOAuth.ServeHTTP(w, r)
}

// EnableCookiesRedirect sends the top window to <prefix>/auth/enable-cookies.
func (a *ShopifyAuth) EnableCookiesRedirect(w http.ResponseWriter, r *http.Request) {
	a.enableCookiesR.ServeHTTP(w, r)
}

// EnableCookies renders the storage access prompt. Once granted, the page writes
// the test cookie and goes back to <prefix>/auth.
func (a *ShopifyAuth) EnableCookies(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	start := TopLevelRedirect{Path: a.StartPath(), AppURL: a.opts.AppURL}
	renderPage(w, enableCookiesPage, redirectionData{
		APIKey:      a.opts.APIKey,
		ShopOrigin:  shop,
		RedirectTo:  start.Target(shop),
		TestCookie:  TestCookie,
		CookieAttrs: testCookieAttrs(a.cookies),
	})
}

// testCookieAttrs mirrors the store's attributes for the cookie the page writes.
// Browsers drop SameSite=None cookies that are not Secure, so plain-http stores get Lax.
func testCookieAttrs(cookies CookieStore) string {
	if s, ok := cookies.(interface{ IsSecure() bool }); ok && !s.IsSecure() {
		return "; SameSite=Lax"
	}
	return "; SameSite=None; Secure"
}

func renderPage(w http.ResponseWriter, tmpl *template.Template, data redirectionData) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
