package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/example/storefront-checkout/internal/warranty"
)

const warrantySchema = `
CREATE TABLE IF NOT EXISTS warranty_policies (
	id               TEXT PRIMARY KEY,
	product_id       BIGINT NOT NULL,
	duration_months  INTEGER NOT NULL CHECK (duration_months > 0),
	price_multiplier NUMERIC(6, 4) NOT NULL CHECK (price_multiplier > 0),
	stripe_price_id  TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (product_id, duration_months)
);
CREATE INDEX IF NOT EXISTS idx_warranty_policies_product ON warranty_policies (product_id);
`

// PostgresWarrantyStore stores warranty policies in PostgreSQL
type PostgresWarrantyStore struct {
	db *sql.DB
}

func NewPostgresWarrantyStore(db *sql.DB) *PostgresWarrantyStore {
	return &PostgresWarrantyStore{db: db}
}

// EnsureSchema creates the warranty_policies table if it does not exist
func (s *PostgresWarrantyStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, warrantySchema); err != nil {
		return fmt.Errorf("failed to create warranty schema: %w", err)
	}
	return nil
}

// ListPolicies returns the policies for a product ordered by duration
func (s *PostgresWarrantyStore) ListPolicies(ctx context.Context, productID int64) ([]warranty.Policy, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, duration_months, price_multiplier, stripe_price_id
		 FROM warranty_policies
		 WHERE product_id = $1
		 ORDER BY duration_months ASC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query warranty policies: %w", err)
	}
	defer rows.Close()

	policies := make([]warranty.Policy, 0)
	for rows.Next() {
		var p warranty.Policy
		if err := rows.Scan(&p.ID, &p.ProductID, &p.DurationMonths, &p.PriceMultiplier, &p.StripePriceID); err != nil {
			return nil, fmt.Errorf("failed to scan warranty policy: %w", err)
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read warranty policies: %w", err)
	}
	return policies, nil
}

// SavePolicy inserts or replaces the policy for its product and duration
func (s *PostgresWarrantyStore) SavePolicy(ctx context.Context, p *warranty.Policy) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO warranty_policies (id, product_id, duration_months, price_multiplier, stripe_price_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_id, duration_months) DO UPDATE SET
			price_multiplier = EXCLUDED.price_multiplier,
			stripe_price_id = EXCLUDED.stripe_price_id
		RETURNING id
	`, p.ID, p.ProductID, p.DurationMonths, p.PriceMultiplier, p.StripePriceID, time.Now()).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to save warranty policy: %w", err)
	}
	return nil
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
