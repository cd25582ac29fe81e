package auth

import "net/http"

const (
	NonceCookie          = "shopifyNonce"
	TopLevelOAuthCookie  = "shopifyTopLevelOAuth"
	TestCookie           = "shopifyTestCookie"
	ShopSettingsIDCookie = "shopSettingsId"
	ShopOriginCookie     = "shopOrigin"
	ShopifyTokenCookie   = "shopifyToken"
)

// CookieStore reads cookies off a request and writes or expires them on a response.
type CookieStore interface {
	Get(r *http.Request, name string) string
	Set(w http.ResponseWriter, name, value string)
	Destroy(w http.ResponseWriter, name string)
}

// HTTPCookies writes HttpOnly session cookies on path "/". Secure cookies default to
// SameSite=None so they survive inside the admin iframe; otherwise Lax.
type HTTPCookies struct {
	Secure   bool
	SameSite http.SameSite
}

// IsSecure reports whether cookies carry the Secure attribute.
func (c HTTPCookies) IsSecure() bool { return c.Secure }

func (c HTTPCookies) Get(r *http.Request, name string) string {
	ck, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

func (c HTTPCookies) Set(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, c.cookie(name, value, 0))
}

func (c HTTPCookies) Destroy(w http.ResponseWriter, name string) {
	http.SetCookie(w, c.cookie(name, "", -1))
}

func (c HTTPCookies) cookie(name, value string, maxAge int) *http.Cookie {
	sameSite := c.SameSite
	if sameSite == 0 {
		sameSite = http.SameSiteLaxMode
		if c.Secure {
			sameSite = http.SameSiteNoneMode
		}
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: sameSite,
	}
}

// HasCookieAccess reports whether the test cookie made it back, i.e. the browser
// lets this origin keep cookies.
func HasCookieAccess(cookies CookieStore, r *http.Request) bool {
	return cookies.Get(r, TestCookie) != ""
}

// ShouldPerformInlineOAuth reports whether a top-level bounce already happened.
func ShouldPerformInlineOAuth(cookies CookieStore, r *http.Request) bool {
	return cookies.Get(r, TopLevelOAuthCookie) != ""
}
