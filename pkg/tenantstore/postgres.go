package tenantstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/multitenant/pkg/pg"
	"github.com/dmitrymomot/multitenant/pkg/tenant"
)

// DefaultPostgresTable matches the table created by pg.Migrate.
const DefaultPostgresTable = "tenants"

// PgxQuerier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps tenants in a PostgreSQL table.
type PostgresStore struct {
	db            PgxQuerier
	table         string
	caseSensitive bool
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

func WithTable(name string) PostgresOption {
	return func(s *PostgresStore) {
		if name != "" {
			s.table = pgx.Identifier{name}.Sanitize()
		}
	}
}

// WithPostgresCaseSensitive compares identifiers exactly instead of by lower().
func WithPostgresCaseSensitive(enabled bool) PostgresOption {
	return func(s *PostgresStore) {
		s.caseSensitive = enabled
	}
}

func NewPostgresStore(db PgxQuerier, opts ...PostgresOption) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: postgres querier cannot be nil", tenant.ErrValidation)
	}
	s := &PostgresStore{
		db:    db,
		table: pgx.Identifier{DefaultPostgresTable}.Sanitize(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *PostgresStore) Name() string { return "postgres" }

const pgColumns = "id, identifier, name, connection_string, items"

func (s *PostgresStore) identifierClause(n int) string {
	if s.caseSensitive {
		return fmt.Sprintf("identifier = $%d", n)
	}
	return fmt.Sprintf("lower(identifier) = lower($%d)", n)
}

func (s *PostgresStore) GetByIdentifier(ctx context.Context, identifier string) (*tenant.Info, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", pgColumns, s.table, s.identifierClause(1))
	return s.queryOne(ctx, query, identifier)
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*tenant.Info, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", pgColumns, s.table)
	return s.queryOne(ctx, query, id)
}

func (s *PostgresStore) queryOne(ctx context.Context, query string, arg string) (*tenant.Info, error) {
	info, err := scanInfo(s.db.QueryRow(ctx, query, arg))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("query tenant: %w", err)
	}
	return info, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*tenant.Info, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY identifier", pgColumns, s.table))
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var out []*tenant.Info
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Add(ctx context.Context, info *tenant.Info) error {
	if err := validateInfo(info); err != nil {
		return err
	}
	id := info.ID
	if id == "" {
		id = uuid.NewString()
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5)", s.table, pgColumns)
	_, err := s.db.Exec(ctx, query, id, info.Identifier, info.Name, info.ConnectionString, itemsOrEmpty(info.Items))
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateTenant, info.Identifier)
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, info *tenant.Info) error {
	if err := validateInfo(info); err != nil {
		return err
	}
	if info.ID == "" {
		return fmt.Errorf("%w: tenant id is required for update", tenant.ErrValidation)
	}

	query := fmt.Sprintf(
		"UPDATE %s SET identifier = $2, name = $3, connection_string = $4, items = $5, updated_at = now() WHERE id = $1",
		s.table,
	)
	tag, err := s.db.Exec(ctx, query, info.ID, info.Identifier, info.Name, info.ConnectionString, itemsOrEmpty(info.Items))
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateTenant, info.Identifier)
		}
		return fmt.Errorf("update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, identifier string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", s.table, s.identifierClause(1))
	tag, err := s.db.Exec(ctx, query, identifier)
	if err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

func scanInfo(row pgx.Row) (*tenant.Info, error) {
	var info tenant.Info
	if err := row.Scan(&info.ID, &info.Identifier, &info.Name, &info.ConnectionString, &info.Items); err != nil {
		return nil, err
	}
	if len(info.Items) == 0 {
		info.Items = nil
	}
	return &info, nil
}

func itemsOrEmpty(items map[string]string) map[string]string {
	if items == nil {
		return map[string]string{}
	}
	return items
}
