package audit

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Actions recorded for a shop's lifecycle.
const (
	ActionInstalled   = "installed"
	ActionUninstalled = "uninstalled"
	ActionRedacted    = "redacted"
)

// Actors.
const (
	ActorMerchant = "merchant"
	ActorShopify  = "shopify"
)

// Recorder appends one audit entry. Callers log a failed write and carry on.
type Recorder interface {
	Record(ctx context.Context, shopDomain, action, actor string, metadata any) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Record(ctx context.Context, shopDomain, action, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (id, shop_domain, action, actor, metadata)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb))
`
	_, err := r.db.Exec(ctx, q, uuid.NewString(), strings.ToLower(strings.TrimSpace(shopDomain)), action, actor, s)
	return err
}

// Nop discards entries.
type Nop struct{}

func (Nop) Record(context.Context, string, string, string, any) error { return nil }
