package shop

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const shopColumns = `id, shop_domain, access_token, COALESCE(scope,''), COALESCE(plan,''), COALESCE(status,'active'), installed_at`

func scanShop(row pgx.Row) (*Shop, error) {
	s := &Shop{}
	if err := row.Scan(&s.ID, &s.Domain, &s.AccessToken, &s.Scope, &s.Plan, &s.Status, &s.InstalledAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// Upsert stores the token granted for domain. A reinstall keeps the row id.
func (r *Repository) Upsert(ctx context.Context, domain, accessToken, scope string) (*Shop, error) {
	const q = `
INSERT INTO shops (id, shop_domain, access_token, scope, status)
VALUES ($1, $2, $3, $4, 'active')
ON CONFLICT (shop_domain) DO UPDATE SET
  access_token = EXCLUDED.access_token,
  scope = EXCLUDED.scope,
  status = 'active'
RETURNING ` + shopColumns
	return scanShop(r.db.QueryRow(ctx, q, uuid.NewString(), normalizeDomain(domain), accessToken, scope))
}

func (r *Repository) SetPlan(ctx context.Context, domain, plan string) error {
	const q = `UPDATE shops SET plan = $2 WHERE shop_domain = $1`
	_, err := r.db.Exec(ctx, q, normalizeDomain(domain), plan)
	return err
}

func (r *Repository) FindByDomain(ctx context.Context, domain string) (*Shop, error) {
	q := `SELECT ` + shopColumns + ` FROM shops WHERE shop_domain = $1`
	return scanShop(r.db.QueryRow(ctx, q, normalizeDomain(domain)))
}

func (r *Repository) DeleteByDomain(ctx context.Context, domain string) error {
	const q = `DELETE FROM shops WHERE shop_domain = $1`
	_, err := r.db.Exec(ctx, q, normalizeDomain(domain))
	return err
}

func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}
