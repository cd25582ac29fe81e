package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/capsule-corp/now-shopify-auth/internal/auth"
	"github.com/capsule-corp/now-shopify-auth/pkg/config"
)

// signcallback prints a callback URL signed the way Shopify signs it, plus the
// nonce cookie the callback expects. Useful with curl against a local server.
func main() {
	var (
		base   = flag.String("base", "", "server base url (defaults to http://localhost<HTTP_ADDR>)")
		shop   = flag.String("shop", "example.myshopify.com", "shop domain")
		state  = flag.String("state", "", "nonce to put in state and in the shopifyNonce cookie (random when empty)")
		code   = flag.String("code", "dev-code", "authorization code")
		secret = flag.String("secret", "", "SHOPIFY_API_SECRET (defaults to config)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *secret == "" {
		*secret = cfg.Shopify.APISecret
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "missing -secret (or SHOPIFY_API_SECRET in env/.env)")
		os.Exit(2)
	}
	if *base == "" {
		*base = "http://localhost" + cfg.HTTPAddr
		if !strings.HasPrefix(cfg.HTTPAddr, ":") {
			*base = "http://" + cfg.HTTPAddr
		}
	}
	if *state == "" {
		n, err := auth.NewNonce()
		if err != nil {
			fmt.Fprintf(os.Stderr, "nonce: %v\n", err)
			os.Exit(1)
		}
		*state = n
	}

	q := url.Values{
		"code":      {*code},
		"shop":      {*shop},
		"state":     {*state},
		"timestamp": {strconv.FormatInt(time.Now().Unix(), 10)},
	}
	q.Set("hmac", auth.SignQuery(*secret, q))

	callback := strings.TrimRight(*base, "/") + cfg.Shopify.AuthPrefix + "/auth/callback?" + q.Encode()
	fmt.Println(callback)
	fmt.Printf("Cookie: %s=%s\n", auth.NonceCookie, *state)
}
