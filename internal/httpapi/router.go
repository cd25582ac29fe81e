package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capsule-corp/now-shopify-auth/internal/api"
	"github.com/capsule-corp/now-shopify-auth/internal/audit"
	"github.com/capsule-corp/now-shopify-auth/internal/auth"
	"github.com/capsule-corp/now-shopify-auth/internal/install"
	"github.com/capsule-corp/now-shopify-auth/internal/shop"
	"github.com/capsule-corp/now-shopify-auth/internal/verify"
	"github.com/capsule-corp/now-shopify-auth/internal/webhook"
	"github.com/capsule-corp/now-shopify-auth/pkg/config"
)

// ShopStore is everything the routes need from shop persistence.
type ShopStore interface {
	Upsert(ctx context.Context, domain, accessToken, scope string) (*shop.Shop, error)
	SetPlan(ctx context.Context, domain, plan string) error
	FindByDomain(ctx context.Context, domain string) (*shop.Shop, error)
	DeleteByDomain(ctx context.Context, domain string) error
}

type Dependencies struct {
	Cfg        config.Config
	Shops      ShopStore
	Audit      audit.Recorder
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := deps.Audit
	if recorder == nil {
		recorder = audit.Nop{}
	}
	sc := deps.Cfg.Shopify

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestSize(1 << 20))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	cookies := auth.HTTPCookies{Secure: deps.Cfg.CookieSecure}
	hook := install.Hook{
		Shops:         deps.Shops,
		Cookies:       cookies,
		HTTPClient:    deps.HTTPClient,
		APIVersion:    sc.APIVersion,
		PublicBaseURL: deps.Cfg.PublicBaseURL,
		HomePath:      "/",
		Audit:         recorder,
		Logger:        logger,
	}

	shopifyAuth := auth.New(auth.OAuthStartOptions{
		AuthConfig: auth.AuthConfig{
			Secret:          sc.APISecret,
			APIKey:          sc.APIKey,
			MyShopifyDomain: sc.MyShopifyDomain,
			AccessMode:      auth.AccessMode(sc.AccessMode),
			AfterAuth:       hook.AfterAuth,
		},
		Prefix:         sc.AuthPrefix,
		Scopes:         sc.Scopes,
		AppURL:         sc.AppURL,
		TopLevelBounce: sc.TopLevelBounce,
		Cookies:        cookies,
		HTTPClient:     deps.HTTPClient,
		Logger:         logger,
	})

	routes := verify.Routes{
		AuthRoute:     shopifyAuth.StartPath(),
		FallbackRoute: sc.FallbackRoute,
	}
	verifier := verify.Verifier{
		Routes:         routes,
		VerifyTokenURL: sc.AuthPrefix + "/auth/verify-token",
		Access:         verifyAccess(sc.VerifyAccess),
		ValidShop:      shopifyAuth.ValidShop,
		Cookies:        cookies,
		HTTPClient:     deps.HTTPClient,
		Logger:         logger,
	}

	webhookHandler := webhook.Handler{
		Secret: sc.WebhookSecret,
		Shops:  deps.Shops,
		Audit:  recorder,
		Logger: logger,
	}

	// OAuth: <prefix>/auth, /auth/inline, /auth/enable-cookies, /auth/callback
	shopifyAuth.Mount(r)

	// Delegated token checks may come from another origin carrying our cookies.
	r.Group(func(r chi.Router) {
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins:   deps.Cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: true,
		}))
		verifyPath := sc.AuthPrefix + "/auth/verify-token"
		r.Get(verifyPath, verifier.TokenStatus)
		// Preflights are answered by the CORS middleware.
		r.Options(verifyPath, func(w http.ResponseWriter, r *http.Request) {})
	})

	// A fallback route pointing elsewhere (another host, the app frontend) is not served here.
	if strings.HasPrefix(sc.FallbackRoute, "/") && sc.FallbackRoute != "/" {
		r.Get(sc.FallbackRoute, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("Open this app from your Shopify admin, or visit " + shopifyAuth.StartPath() + "?shop=<your-shop>.myshopify.com to install it.\n"))
		})
	}

	r.Get("/logout", func(w http.ResponseWriter, r *http.Request) {
		shopOrigin := cookies.Get(r, auth.ShopOriginCookie)
		if shopOrigin == "" {
			shopOrigin = r.URL.Query().Get("shop")
		}
		verify.LoginAgain(w, r, cookies, shopOrigin, routes)
	})

	// App home: the session cookies must hold a live token.
	r.Group(func(r chi.Router) {
		r.Use(verify.VerifyRequest(verifier))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			api.WriteJSON(w, http.StatusOK, map[string]string{
				"shopOrigin": cookies.Get(r, auth.ShopOriginCookie),
				"status":     "installed",
			})
		})
	})

	// Embedded admin APIs authenticated by App Bridge session tokens.
	r.Route("/api", func(r chi.Router) {
		r.Use(api.ShopifySessionAuth(sc.APIKey, sc.APISecret, deps.Shops, logger))
		r.Get("/shop", func(w http.ResponseWriter, r *http.Request) {
			s := api.ShopFromContext(r.Context())
			api.WriteJSON(w, http.StatusOK, map[string]any{
				"id":          s.ID,
				"domain":      s.Domain,
				"plan":        s.Plan,
				"status":      s.Status,
				"installedAt": s.InstalledAt,
			})
		})
	})

	r.Post("/webhooks/shopify/{topic}", webhookHandler.ServeHTTP)

	return r
}

func verifyAccess(mode string) verify.Access {
	if mode == verify.DelegatedAccess.String() {
		return verify.DelegatedAccess
	}
	return verify.DirectAccess
}
