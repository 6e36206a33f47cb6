package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Connection pool defaults, shared by all relational backends.
const (
	defaultConnectTimeout = 5 * time.Second
	maxConnectionsIdle    = 5
	maxConnectionsOpen    = 10
)

// Gateway implements every backend operation on top of a Registry. One
// Gateway serves all five backend kinds; operations against different kinds
// never contend.
type Gateway struct {
	registry       *Registry
	dialects       map[BackendKind]SQLDialect
	connectTimeout time.Duration
	queryTimeout   time.Duration // 0 means no deadline on queries
	maxRows        int64         // 0 means no page size cap
}

func NewGateway(connectTimeout, queryTimeout time.Duration, maxRows int64) *Gateway {
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	return &Gateway{
		registry: NewRegistry(),
		dialects: map[BackendKind]SQLDialect{
			KindMySQL:    &MySQLDialect{},
			KindPostgres: &PostgresDialect{},
			KindSQLite:   &SQLiteDialect{},
		},
		connectTimeout: connectTimeout,
		queryTimeout:   queryTimeout,
		maxRows:        maxRows,
	}
}

// Close releases every live connection and tunnel.
func (g *Gateway) Close() { g.registry.Close() }

// opCtx derives the context queries run under. Connect operations always
// get a deadline; queries only when one was configured.
func (g *Gateway) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.queryTimeout > 0 {
		return context.WithTimeout(ctx, g.queryTimeout)
	}
	return context.WithCancel(ctx)
}

// Connect establishes the connection for kind, optionally through an SSH
// tunnel, and stores it in the registry. On any failure the registry slot is
// left unchanged and a partially opened tunnel is torn down.
func (g *Gateway) Connect(ctx context.Context, kind BackendKind, p ConnectParams, tun *SSHTarget) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.connectTimeout)
	defer cancel()

	host, port := p.Host, p.Port
	var sess *TunnelSession
	if tun != nil && kind != KindSQLite {
		var err error
		sess, err = OpenTunnel(*tun, p.Host, p.Port, g.connectTimeout)
		if err != nil {
			return "", err
		}
		host, port = "127.0.0.1", sess.LocalPort
	}

	fail := func(err error) (string, error) {
		if sess != nil {
			sess.Close()
		}
		return "", err
	}

	switch kind {
	case KindMySQL, KindPostgres, KindSQLite:
		d := g.dialects[kind]
		db, err := openSQLPool(ctx, d, p, host, port)
		if err != nil {
			return fail(err)
		}
		if err := g.registry.Set(kind, db, db.Close, p, sess); err != nil {
			db.Close()
			return fail(err)
		}

	case KindRedis:
		client := redis.NewClient(&redis.Options{
			Addr:        fmt.Sprintf("%s:%d", host, port),
			Password:    p.Password,
			DialTimeout: g.connectTimeout,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return fail(err)
		}
		if err := g.registry.Set(kind, client, client.Close, p, sess); err != nil {
			client.Close()
			return fail(err)
		}

	case KindMongo:
		client, err := mongoConnect(ctx, p, host, port)
		if err != nil {
			return fail(err)
		}
		closeFn := func() error { return client.Disconnect(context.Background()) }
		if err := g.registry.Set(kind, client, closeFn, p, sess); err != nil {
			closeFn()
			return fail(err)
		}

	default:
		return fail(ErrUnknownBackend)
	}

	if kind == KindSQLite {
		return fmt.Sprintf("Connected to %s", p.Path), nil
	}
	return fmt.Sprintf("Connected to %s:%d", p.Host, p.Port), nil
}

// openSQLPool opens and probes a bounded database/sql pool.
func openSQLPool(ctx context.Context, d SQLDialect, p ConnectParams, host string, port int) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName(), d.BuildDSN(p, host, port))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxIdleConns(maxConnectionsIdle)
	db.SetMaxOpenConns(maxConnectionsOpen)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// sqlConn fetches the live pool and dialect for a relational kind.
func (g *Gateway) sqlConn(kind BackendKind) (*sql.DB, SQLDialect, error) {
	d, ok := g.dialects[kind]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s is not a relational backend", ErrUnknownBackend, kind)
	}
	h, err := g.registry.Get(kind)
	if err != nil {
		return nil, nil, err
	}
	return h.(*sql.DB), d, nil
}

// --- relational operations ---

func (g *Gateway) ListTables(ctx context.Context, kind BackendKind) ([]string, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlListTables(ctx, db, d)
}

func (g *Gateway) ListViews(ctx context.Context, kind BackendKind) ([]string, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlListViews(ctx, db, d)
}

func (g *Gateway) ListFunctions(ctx context.Context, kind BackendKind) ([]string, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlListFunctions(ctx, db, d)
}

func (g *Gateway) ListProcedures(ctx context.Context, kind BackendKind) ([]string, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlListProcedures(ctx, db, d)
}

func (g *Gateway) GetColumns(ctx context.Context, kind BackendKind, table string) ([]string, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlColumns(ctx, db, d, table)
}

// GetPrimaryKey returns the single-column primary key name, or "" when the
// table has none (or a composite one).
func (g *Gateway) GetPrimaryKey(ctx context.Context, kind BackendKind, table string) (string, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return "", err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	pk, ok, err := sqlPrimaryKey(ctx, db, d, table)
	if err != nil || !ok {
		return "", err
	}
	return pk, nil
}

func (g *Gateway) GetRowCount(ctx context.Context, kind BackendKind, table string) (int64, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return 0, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlRowCount(ctx, db, d, table)
}

func (g *Gateway) GetRows(ctx context.Context, kind BackendKind, table string, limit, offset int64) (*RowsResult, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return nil, err
	}
	if g.maxRows > 0 && (limit <= 0 || limit > g.maxRows) {
		limit = g.maxRows
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlGetRows(ctx, db, d, table, limit, offset)
}

func (g *Gateway) UpdateCell(ctx context.Context, kind BackendKind, table, pkCol, pkVal, col, newVal string) (int64, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return 0, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlUpdateCell(ctx, db, d, table, pkCol, pkVal, col, newVal)
}

func (g *Gateway) InsertRow(ctx context.Context, kind BackendKind, table string, values map[string]any) (int64, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return 0, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlInsertRow(ctx, db, d, table, values)
}

func (g *Gateway) DeleteRow(ctx context.Context, kind BackendKind, table, pkCol, pkVal string) (int64, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return 0, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlDeleteRow(ctx, db, d, table, pkCol, pkVal)
}

func (g *Gateway) DropTable(ctx context.Context, kind BackendKind, table string) error {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlDropTable(ctx, db, d, table)
}

func (g *Gateway) RenameTable(ctx context.Context, kind BackendKind, oldName, newName string) error {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlRenameTable(ctx, db, d, oldName, newName)
}

func (g *Gateway) ExecuteRaw(ctx context.Context, kind BackendKind, stmt string) (*RawResult, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlExecuteRaw(ctx, db, d, stmt)
}

func (g *Gateway) ListDatabasesWithSize(ctx context.Context, kind BackendKind) ([]SizeEntry, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlDatabasesWithSize(ctx, db, d)
}

func (g *Gateway) ListTablesWithSize(ctx context.Context, kind BackendKind, database string) ([]SizeEntry, error) {
	db, d, err := g.sqlConn(kind)
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return sqlTablesWithSize(ctx, db, d, database)
}

// UseDatabase re-targets the live relational connection at another database
// by re-opening the pool from the stored connect parameters. An existing
// tunnel keeps serving the new pool; the replaced pool is closed.
func (g *Gateway) UseDatabase(ctx context.Context, kind BackendKind, database string) (string, error) {
	d, ok := g.dialects[kind]
	if !ok || kind == KindSQLite {
		return "", fmt.Errorf("use database is not supported for %s", kind)
	}
	p, err := g.registry.Params(kind)
	if err != nil {
		return "", err
	}
	sess, err := g.registry.Tunnel(kind)
	if err != nil {
		return "", err
	}

	p.Database = database
	host, port := p.Host, p.Port
	if sess != nil {
		host, port = "127.0.0.1", sess.LocalPort
	}

	ctx, cancel := context.WithTimeout(ctx, g.connectTimeout)
	defer cancel()

	db, err := openSQLPool(ctx, d, p, host, port)
	if err != nil {
		return "", err
	}
	if err := g.registry.Set(kind, db, db.Close, p, sess); err != nil {
		db.Close()
		return "", err
	}
	return fmt.Sprintf("Using database %s", database), nil
}

// --- key-value operations ---

func (g *Gateway) redisConn() (*redis.Client, error) {
	h, err := g.registry.Get(KindRedis)
	if err != nil {
		return nil, err
	}
	return h.(*redis.Client), nil
}

func (g *Gateway) RedisListKeys(ctx context.Context, pattern string) ([]string, error) {
	c, err := g.redisConn()
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return redisListKeys(ctx, c, pattern)
}

func (g *Gateway) RedisGetValue(ctx context.Context, key string) (string, error) {
	c, err := g.redisConn()
	if err != nil {
		return "", err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return redisGetValue(ctx, c, key)
}

func (g *Gateway) RedisSetString(ctx context.Context, key, value string) error {
	c, err := g.redisConn()
	if err != nil {
		return err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return redisSetString(ctx, c, key, value)
}

func (g *Gateway) RedisDeleteKey(ctx context.Context, key string) error {
	c, err := g.redisConn()
	if err != nil {
		return err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return redisDeleteKey(ctx, c, key)
}

func (g *Gateway) RedisRenameKey(ctx context.Context, oldKey, newKey string) error {
	c, err := g.redisConn()
	if err != nil {
		return err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return redisRenameKey(ctx, c, oldKey, newKey)
}

func (g *Gateway) RedisTTL(ctx context.Context, key string) (int64, error) {
	c, err := g.redisConn()
	if err != nil {
		return 0, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return redisTTL(ctx, c, key)
}

func (g *Gateway) RedisExecuteRaw(ctx context.Context, commandLine string) (string, error) {
	c, err := g.redisConn()
	if err != nil {
		return "", err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return redisExecuteRaw(ctx, c, commandLine)
}

// --- document-store operations ---

func (g *Gateway) MongoListDatabases(ctx context.Context) ([]string, error) {
	h, err := g.registry.Get(KindMongo)
	if err != nil {
		return nil, err
	}
	ctx, cancel := g.opCtx(ctx)
	defer cancel()
	return mongoListDatabases(ctx, h.(*mongo.Client))
}
