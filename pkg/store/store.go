package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carlosmiguelsoto/einstein/pkg/telemetry"
	"github.com/carlosmiguelsoto/einstein/pkg/utils"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations
var migrations embed.FS

type DBClient struct {
	pool *pgxpool.Pool
}

type Transaction struct {
	Ctx    context.Context
	Tx     pgx.Tx
	Conn   *pgxpool.Conn
	Cancel bool
}

func (db *DBClient) Tx(ctx context.Context) (*Transaction, error) {
	conn, err := db.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		conn.Release()
		return nil, err
	}
	return &Transaction{Ctx: ctx, Tx: tx, Conn: conn}, nil
}

func (tx *Transaction) Close(func_error *error) (err error) {
	if tx == nil {
		return nil
	}
	defer tx.Conn.Release()

	if tx.Cancel || (func_error != nil && *func_error != nil) {
		err = tx.Tx.Rollback(tx.Ctx)
	} else {
		err = tx.Tx.Commit(tx.Ctx)
		if func_error != nil {
			*func_error = err
		}
	}
	return
}

type CustomRow struct {
	inner pgx.Row
	query string
}

type CustomError struct {
	InnerError error
	Query      string
}

func (c *CustomError) Error() string {
	return fmt.Sprintf("QueryRow(): error during query %s: %s", c.Query, c.InnerError)
}

func (c *CustomError) Unwrap() error {
	return c.InnerError
}

func IsNoRows(err error) bool {
	switch err := err.(type) {
	case *CustomError:
		return IsNoRows(err.InnerError)
	default:
		return err == pgx.ErrNoRows
	}
}

func (r CustomRow) Scan(vals ...interface{}) error {
	err := r.inner.Scan(vals...)
	if err != nil {
		return &CustomError{Query: r.query, InnerError: err}
	}
	return nil
}

func (tx *Transaction) QueryRow(query string, args ...any) CustomRow {
	return CustomRow{inner: tx.Tx.QueryRow(tx.Ctx, query, args...), query: query}
}

func (tx *Transaction) Exec(query string, args ...any) (pgconn.CommandTag, error) {
	res, err := tx.Tx.Exec(tx.Ctx, query, args...)
	if err != nil {
		return res, fmt.Errorf("Exec(): error during query %s: %s", query, err)
	}
	return res, nil
}

// NewPostgresKV connects to url and applies the embedded migrations.
func NewPostgresKV(ctx context.Context, url string) (*DBClient, error) {
	files, err := utils.ExtractEmbeddedMigrations(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	client, err := MakeClientWithInitScript(ctx, url, files, "einstein")
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func MakeClientWithInitScript(ctx context.Context, url string, init_sql []utils.Migration, appname string) (client DBClient, err error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return
	}
	client.pool = pool

	tx, err := client.Tx(ctx)
	if err != nil {
		return
	}
	defer tx.Close(&err)

	_, err = tx.Exec(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s_migrations (version TEXT PRIMARY KEY)", appname))
	if err != nil {
		return
	}

	for _, m := range init_sql {
		row := tx.QueryRow(fmt.Sprintf("SELECT version FROM %s_migrations WHERE version = $1", appname), m.Name)
		var version string
		err = row.Scan(&version)
		if IsNoRows(err) {
			for _, part := range strings.Split(m.SQL, ";;") {
				if strings.TrimSpace(part) == "" {
					continue
				}
				telemetry.Log("executing sql", slog.LevelDebug, "migration", m.Name)
				_, err = tx.Exec(part)
				if err != nil {
					telemetry.Log("error executing sql: "+err.Error(), slog.LevelError)
					return
				}
			}
			_, err = tx.Exec(fmt.Sprintf("INSERT INTO %s_migrations(version) VALUES ($1)", appname), m.Name)
			if err != nil {
				return
			}
		} else if err != nil {
			return
		}
	}

	return
}

func (db *DBClient) Get(ctx context.Context, key string) (value []byte, err error) {
	tx, err := db.Tx(ctx)
	if err != nil {
		return
	}
	defer tx.Close(&err)
	err = tx.QueryRow("SELECT value FROM einstein_kv WHERE key = $1", key).Scan(&value)
	if IsNoRows(err) {
		err = ErrNotFound
	}
	return
}

func (db *DBClient) Put(ctx context.Context, key string, value []byte) (err error) {
	tx, err := db.Tx(ctx)
	if err != nil {
		return
	}
	defer tx.Close(&err)
	_, err = tx.Exec(`
		INSERT INTO einstein_kv(key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT(key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`,
		key, value)
	return
}

func (db *DBClient) Delete(ctx context.Context, key string) (err error) {
	tx, err := db.Tx(ctx)
	if err != nil {
		return
	}
	defer tx.Close(&err)
	_, err = tx.Exec("DELETE FROM einstein_kv WHERE key = $1", key)
	return
}

func (db *DBClient) Close() error {
	db.pool.Close()
	return nil
}
