package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/capsule-corp/now-shopify-auth/internal/webhook"
	"github.com/capsule-corp/now-shopify-auth/pkg/config"
)

func main() {
	var (
		url       = flag.String("url", "", "webhook endpoint url (defaults to http://localhost<HTTP_ADDR>/webhooks/shopify/<topic>)")
		topic     = flag.String("topic", "app/uninstalled", "shopify topic header value")
		shop      = flag.String("shop", "example.myshopify.com", "X-Shopify-Shop-Domain")
		secret    = flag.String("secret", "", "SHOPIFY_WEBHOOK_SECRET (defaults to config)")
		payload   = flag.String("payload", "", "path to json payload file (defaults to {})")
		webhookID = flag.String("id", "", "optional webhook id header value")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *secret == "" {
		*secret = cfg.Shopify.WebhookSecret
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "missing -secret (or SHOPIFY_WEBHOOK_SECRET in env/.env)")
		os.Exit(2)
	}
	if *url == "" {
		host := "localhost" + cfg.HTTPAddr
		if !strings.HasPrefix(cfg.HTTPAddr, ":") {
			host = cfg.HTTPAddr
		}
		*url = "http://" + host + "/webhooks/shopify/" + webhook.NormalizeTopic(*topic)
	}

	b := []byte("{}")
	if *payload != "" {
		b, err = os.ReadFile(*payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read payload: %v\n", err)
			os.Exit(2)
		}
	}

	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(b))
	if err != nil {
		fmt.Fprintf(os.Stderr, "new request: %v\n", err)
		os.Exit(2)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Topic", *topic)
	req.Header.Set("X-Shopify-Shop-Domain", *shop)
	req.Header.Set("X-Shopify-Hmac-Sha256", webhook.Sign(b, *secret))
	if *webhookID != "" {
		req.Header.Set("X-Shopify-Webhook-Id", *webhookID)
	}

	c := &http.Client{Timeout: 10 * time.Second}
	resp, err := c.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "post: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status=%d\n%s\n", resp.StatusCode, string(body))
}
