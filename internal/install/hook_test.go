package install

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/capsule-corp/now-shopify-auth/internal/audit"
	"github.com/capsule-corp/now-shopify-auth/internal/auth"
	"github.com/capsule-corp/now-shopify-auth/internal/shop"
)

type memShops struct {
	saved map[string]*shop.Shop
	plans map[string]string
	err   error
}

func (m *memShops) Upsert(_ context.Context, domain, token, scope string) (*shop.Shop, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := &shop.Shop{ID: "id-" + domain, Domain: domain, AccessToken: token, Scope: scope}
	m.saved[domain] = s
	return s, nil
}

func (m *memShops) SetPlan(_ context.Context, domain, plan string) error {
	m.plans[domain] = plan
	return nil
}

type recordingAudit struct{ actions []string }

func (a *recordingAudit) Record(_ context.Context, shopDomain, action, actor string, _ any) error {
	a.actions = append(a.actions, shopDomain+" "+action+" "+actor)
	return nil
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)) }

func TestAfterAuth_PersistsAndStartsSession(t *testing.T) {
	admin := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"shop":{"id":1,"plan_name":"basic"}}`))
	}))
	defer admin.Close()
	u, _ := url.Parse(admin.URL)
	shopDomain := u.Host

	store := &memShops{saved: map[string]*shop.Shop{}, plans: map[string]string{}}
	log := &recordingAudit{}
	h := Hook{Shops: store, Cookies: auth.HTTPCookies{}, HTTPClient: admin.Client(), Audit: log, Logger: quiet()}

	rec := httptest.NewRecorder()
	h.AfterAuth(rec, httptest.NewRequest(http.MethodGet, "/auth/callback", nil), auth.AfterAuthParams{
		ShopOrigin: shopDomain, ShopifyToken: "shpat_1", Scope: "read_products",
	})

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if got := store.saved[shopDomain]; got == nil || got.AccessToken != "shpat_1" || got.Scope != "read_products" {
		t.Fatalf("token not stored: %+v", got)
	}
	if store.plans[shopDomain] != "basic" {
		t.Fatalf("plan not stored: %v", store.plans)
	}

	if want := shopDomain + " " + audit.ActionInstalled + " " + audit.ActorMerchant; len(log.actions) != 1 || log.actions[0] != want {
		t.Fatalf("unexpected audit entries %v", log.actions)
	}

	cookies := map[string]string{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c.Value
	}
	if cookies[auth.ShopOriginCookie] != shopDomain || cookies[auth.ShopifyTokenCookie] != "shpat_1" || cookies[auth.ShopSettingsIDCookie] == "" {
		t.Fatalf("session cookies not set: %v", cookies)
	}
}

func TestAfterAuth_StoreFailure(t *testing.T) {
	store := &memShops{err: errors.New("db down")}
	h := Hook{Shops: store, Cookies: auth.HTTPCookies{}, Logger: quiet()}

	rec := httptest.NewRecorder()
	h.AfterAuth(rec, httptest.NewRequest(http.MethodGet, "/auth/callback", nil), auth.AfterAuthParams{ShopOrigin: "a.myshopify.com", ShopifyToken: "t"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("no session may start when the token was not saved")
	}
}
