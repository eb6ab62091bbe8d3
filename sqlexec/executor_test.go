package sqlexec_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tinywasm/schema"
	"github.com/tinywasm/schema/sqlexec"
)

func setup(t *testing.T) (*schema.DB, *sql.DB) {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	exec := sqlexec.New(conn, sqlexec.DialectConfigFor(sqlexec.DialectSQLite))
	return schema.New(exec), conn
}

func columns(t *testing.T, conn *sql.DB, table string) []string {
	t.Helper()
	rows, err := conn.Query(`SELECT name FROM pragma_table_info(?) ORDER BY cid`, table)
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func hasIndex(t *testing.T, conn *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := conn.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestExecutor_CreateAndExclusive(t *testing.T) {
	db, conn := setup(t)
	ctx := context.Background()

	err := db.Schema("users").
		ID().
		Field("email", schema.TypeString, schema.Required{}).
		Unique("email").
		Create(ctx).
		Wait()
	require.NoError(t, err)
	require.Equal(t, []string{"id", "email"}, columns(t, conn, "users"))

	err = db.Schema("users").ID().Create(ctx).Wait()
	require.ErrorIs(t, err, schema.ErrExists)

	err = db.Schema("users").ID().IgnoreExisting().Create(ctx).Wait()
	require.NoError(t, err)
}

func TestExecutor_UpdateAddsColumnsAndIndexes(t *testing.T) {
	db, conn := setup(t)
	ctx := context.Background()
	require.NoError(t, db.Schema("users").ID().Field("email", schema.TypeString).Create(ctx).Wait())

	err := db.Schema("users").
		Field("age", schema.TypeInt64).
		Unique("email").
		Update(ctx).
		Wait()
	require.NoError(t, err)
	require.Equal(t, []string{"id", "email", "age"}, columns(t, conn, "users"))
	require.True(t, hasIndex(t, conn, "uq_users_email"))

	require.NoError(t, db.Schema("users").DeleteUnique("email").DeleteField("age").Update(ctx).Wait())
	require.False(t, hasIndex(t, conn, "uq_users_email"))
	require.Equal(t, []string{"id", "email"}, columns(t, conn, "users"))

	err = db.Schema("users").DeleteUnique("email").Update(ctx).Wait()
	require.ErrorIs(t, err, schema.ErrNotFound)
}

func TestExecutor_DeleteUniqueCreatedWithTable(t *testing.T) {
	db, conn := setup(t)
	ctx := context.Background()

	err := db.Schema("users").
		ID().
		Field("email", schema.TypeString).
		Unique("email").
		Create(ctx).
		Wait()
	require.NoError(t, err)
	require.True(t, hasIndex(t, conn, "uq_users_email"))

	_, err = conn.Exec(`INSERT INTO users (id, email) VALUES ('a', 'x@y'), ('b', 'x@y')`)
	require.Error(t, err)

	require.NoError(t, db.Schema("users").DeleteUnique("email").Update(ctx).Wait())
	require.False(t, hasIndex(t, conn, "uq_users_email"))

	_, err = conn.Exec(`INSERT INTO users (id, email) VALUES ('a', 'x@y'), ('b', 'x@y')`)
	require.NoError(t, err)
}

func TestExecutor_UpdateRollsBack(t *testing.T) {
	db, conn := setup(t)
	ctx := context.Background()
	require.NoError(t, db.Schema("users").ID().Create(ctx).Wait())

	err := db.Schema("users").
		Field("nickname", schema.TypeString).
		DeleteField("missing").
		Update(ctx).
		Wait()
	require.ErrorIs(t, err, schema.ErrNotFound)
	require.Equal(t, []string{"id"}, columns(t, conn, "users"))
}

func TestExecutor_Delete(t *testing.T) {
	db, conn := setup(t)
	ctx := context.Background()
	require.NoError(t, db.Schema("users").ID().Create(ctx).Wait())

	require.NoError(t, db.Schema("users").Delete(ctx).Wait())
	require.Empty(t, columns(t, conn, "users"))

	err := db.Schema("users").Delete(ctx).Wait()
	require.ErrorIs(t, err, schema.ErrNotFound)
}

func TestExecutor_ForeignKeysOnCreate(t *testing.T) {
	db, conn := setup(t)
	ctx := context.Background()
	require.NoError(t, db.Schema("users").ID().Create(ctx).Wait())

	err := db.Schema("orders").
		Field("id", schema.TypeInt64, schema.Identifier{Auto: true}).
		Field("user_id", schema.TypeUUID, schema.Required{}).
		ForeignKey("user_id", "users", "id", schema.OnDelete(schema.Cascade)).
		Create(ctx).
		Wait()
	require.NoError(t, err)
	require.Equal(t, []string{"id", "user_id"}, columns(t, conn, "orders"))
}

func TestOpen(t *testing.T) {
	exec, err := sqlexec.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.Equal(t, sqlexec.DialectSQLite, exec.Dialect().Name)

	db := schema.New(exec)
	require.NoError(t, db.Schema("t").Field("a", schema.TypeBool).Create(context.Background()).Wait())
	require.NoError(t, db.Close())

	_, err = sqlexec.Open("oracle", "")
	require.Error(t, err)
}

func TestExecutor_Tx(t *testing.T) {
	db, conn := setup(t)
	ctx := context.Background()

	err := db.Tx(ctx, func(tx *schema.DB) error {
		if err := tx.Schema("orgs").ID().Create(ctx).Wait(); err != nil {
			return err
		}
		return tx.Schema("users").
			ID().
			Field("org_id", schema.TypeUUID).
			ForeignKey("org_id", "orgs", schema.KeyID).
			Create(ctx).
			Wait()
	})
	require.NoError(t, err)
	require.Equal(t, []string{"id"}, columns(t, conn, "orgs"))
	require.Equal(t, []string{"id", "org_id"}, columns(t, conn, "users"))
}

func TestExecutor_TxRollback(t *testing.T) {
	db, conn := setup(t)
	ctx := context.Background()

	err := db.Tx(ctx, func(tx *schema.DB) error {
		if err := tx.Schema("orgs").ID().Create(ctx).Wait(); err != nil {
			return err
		}
		return tx.Schema("orgs").ID().Create(ctx).Wait()
	})
	require.ErrorIs(t, err, schema.ErrExists)
	require.Empty(t, columns(t, conn, "orgs"))
}
