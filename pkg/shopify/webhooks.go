package shopify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type webhookCreateRequest struct {
	Webhook webhookPayload `json:"webhook"`
}

type webhookPayload struct {
	Topic   string `json:"topic"`
	Address string `json:"address"`
	Format  string `json:"format"`
}

type webhookCreateResponse struct {
	Webhook struct {
		ID int64 `json:"id"`
	} `json:"webhook"`
}

// CreateWebhook subscribes address to topic and returns the webhook id.
func (c Client) CreateWebhook(ctx context.Context, topic string, address string) (int64, error) {
	topic = strings.TrimSpace(topic)
	address = strings.TrimSpace(address)
	if topic == "" || address == "" {
		return 0, fmt.Errorf("missing topic or address")
	}
	if !strings.HasPrefix(address, "https://") {
		return 0, fmt.Errorf("webhook address must be https: %q", address)
	}

	req := webhookCreateRequest{
		Webhook: webhookPayload{
			Topic:   topic,
			Address: address,
			Format:  "json",
		},
	}
	var resp webhookCreateResponse
	if _, err := c.doJSON(ctx, http.MethodPost, "/webhooks.json", req, &resp); err != nil {
		return 0, fmt.Errorf("create webhook %s: %w", topic, err)
	}
	return resp.Webhook.ID, nil
}
