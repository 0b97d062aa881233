package tenantstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/multitenant/pkg/tenant"
	"github.com/dmitrymomot/multitenant/pkg/tenantstore"
)

// fakeRow scans a fixed tenant record.
type fakeRow struct {
	info *tenant.Info
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != 5 {
		return fmt.Errorf("unexpected column count %d", len(dest))
	}
	*dest[0].(*string) = r.info.ID
	*dest[1].(*string) = r.info.Identifier
	*dest[2].(*string) = r.info.Name
	*dest[3].(*string) = r.info.ConnectionString
	items := map[string]string{}
	for k, v := range r.info.Items {
		items[k] = v
	}
	*dest[4].(*map[string]string) = items
	return nil
}

// fakeRows iterates over fixed tenant records.
type fakeRows struct {
	pgx.Rows
	infos  []*tenant.Info
	pos    int
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.infos) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return fakeRow{info: r.infos[r.pos-1]}.Scan(dest...)
}

func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     { r.closed = true }

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	a := m.Called(ctx, sql, args)
	return a.Get(0).(pgconn.CommandTag), a.Error(1)
}

func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	a := m.Called(ctx, sql, args)
	rows, _ := a.Get(0).(pgx.Rows)
	return rows, a.Error(1)
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	a := m.Called(ctx, sql, args)
	return a.Get(0).(pgx.Row)
}

func TestPostgresStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("lookup is case insensitive by default", func(t *testing.T) {
		t.Parallel()

		db := &mockQuerier{}
		db.On("QueryRow", ctx,
			`SELECT id, identifier, name, connection_string, items FROM "tenants" WHERE lower(identifier) = lower($1)`,
			[]any{"InItEcH"},
		).Return(fakeRow{info: sampleTenants()[0]})

		s, err := tenantstore.NewPostgresStore(db)
		require.NoError(t, err)

		info, err := s.GetByIdentifier(ctx, "InItEcH")
		require.NoError(t, err)
		assert.Equal(t, "initech-id", info.ID)
		assert.Nil(t, info.Items)
		db.AssertExpectations(t)
	})

	t.Run("case sensitive and custom table", func(t *testing.T) {
		t.Parallel()

		db := &mockQuerier{}
		db.On("QueryRow", ctx,
			`SELECT id, identifier, name, connection_string, items FROM "app_tenants" WHERE identifier = $1`,
			[]any{"lol"},
		).Return(fakeRow{info: &tenant.Info{ID: "lol-id", Identifier: "lol", Items: map[string]string{"plan": "pro"}}})

		s, err := tenantstore.NewPostgresStore(db, tenantstore.WithTable("app_tenants"), tenantstore.WithPostgresCaseSensitive(true))
		require.NoError(t, err)

		info, err := s.GetByIdentifier(ctx, "lol")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"plan": "pro"}, info.Items)
	})

	t.Run("no rows means not found", func(t *testing.T) {
		t.Parallel()

		db := &mockQuerier{}
		db.On("QueryRow", ctx, mock.Anything, mock.Anything).Return(fakeRow{err: pgx.ErrNoRows})

		s, err := tenantstore.NewPostgresStore(db)
		require.NoError(t, err)

		_, err = s.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("query failures are wrapped", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("conn closed")
		db := &mockQuerier{}
		db.On("QueryRow", ctx, mock.Anything, mock.Anything).Return(fakeRow{err: boom})

		s, err := tenantstore.NewPostgresStore(db)
		require.NoError(t, err)

		_, err = s.GetByIdentifier(ctx, "x")
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		rows := &fakeRows{infos: sampleTenants()}
		db := &mockQuerier{}
		db.On("Query", ctx, `SELECT id, identifier, name, connection_string, items FROM "tenants" ORDER BY identifier`, []any(nil)).
			Return(rows, nil)

		s, err := tenantstore.NewPostgresStore(db)
		require.NoError(t, err)

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "lol", list[1].Identifier)
		assert.True(t, rows.closed)
	})

	t.Run("add generates id", func(t *testing.T) {
		t.Parallel()

		db := &mockQuerier{}
		db.On("Exec", ctx, `INSERT INTO "tenants" (id, identifier, name, connection_string, items) VALUES ($1, $2, $3, $4, $5)`,
			mock.MatchedBy(func(args []any) bool {
				_, err := uuid.Parse(args[0].(string))
				return err == nil && args[1] == "acme" && assert.ObjectsAreEqual(map[string]string{}, args[4])
			}),
		).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

		s, err := tenantstore.NewPostgresStore(db)
		require.NoError(t, err)

		in := &tenant.Info{Identifier: "acme"}
		require.NoError(t, s.Add(ctx, in))
		assert.Empty(t, in.ID)
		db.AssertExpectations(t)
	})

	t.Run("add duplicate", func(t *testing.T) {
		t.Parallel()

		db := &mockQuerier{}
		db.On("Exec", ctx, mock.Anything, mock.Anything).
			Return(pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"})

		s, err := tenantstore.NewPostgresStore(db)
		require.NoError(t, err)

		err = s.Add(ctx, &tenant.Info{ID: "1", Identifier: "acme"})
		assert.ErrorIs(t, err, tenantstore.ErrDuplicateTenant)
		assert.ErrorIs(t, s.Add(ctx, &tenant.Info{}), tenant.ErrValidation)
	})

	t.Run("update and remove report missing rows", func(t *testing.T) {
		t.Parallel()

		db := &mockQuerier{}
		db.On("Exec", ctx, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("UPDATE 0"), nil).Once()
		db.On("Exec", ctx, `DELETE FROM "tenants" WHERE lower(identifier) = lower($1)`, []any{"acme"}).
			Return(pgconn.NewCommandTag("DELETE 0"), nil).Once()

		s, err := tenantstore.NewPostgresStore(db)
		require.NoError(t, err)

		assert.ErrorIs(t, s.Update(ctx, &tenant.Info{ID: "1", Identifier: "acme"}), tenant.ErrTenantNotFound)
		assert.ErrorIs(t, s.Remove(ctx, "acme"), tenant.ErrTenantNotFound)
		assert.ErrorIs(t, s.Update(ctx, &tenant.Info{Identifier: "acme"}), tenant.ErrValidation)
		db.AssertExpectations(t)
	})

	t.Run("update succeeds", func(t *testing.T) {
		t.Parallel()

		db := &mockQuerier{}
		db.On("Exec", ctx, mock.Anything, mock.Anything).Return(pgconn.NewCommandTag("UPDATE 1"), nil)

		s, err := tenantstore.NewPostgresStore(db)
		require.NoError(t, err)
		assert.NoError(t, s.Update(ctx, &tenant.Info{ID: "1", Identifier: "acme"}))
	})

	t.Run("nil querier", func(t *testing.T) {
		t.Parallel()

		_, err := tenantstore.NewPostgresStore(nil)
		assert.ErrorIs(t, err, tenant.ErrValidation)
	})
}
