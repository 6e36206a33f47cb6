package main

import (
	"fmt"
	"net/url"
	"strings"
)

// PostgresDialect implements SQLDialect for PostgreSQL databases.
// It is the inline-casting dialect: bound text is cast to the column's
// declared type in the statement itself, and primary keys are compared as
// text, so callers can address any column type with string input.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string { return "postgres" }
func (d *PostgresDialect) Kind() BackendKind  { return KindPostgres }

func (d *PostgresDialect) BuildDSN(p ConnectParams, host string, port int) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     "/" + p.Database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func (d *PostgresDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *PostgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (d *PostgresDialect) ClassifyType(dbType string) typeClass {
	switch strings.ToUpper(dbType) {
	case "INT2", "INT4", "INT8", "OID":
		return classInt
	case "FLOAT4", "FLOAT8", "NUMERIC", "DECIMAL":
		return classFloat
	case "BOOL":
		return classBool
	case "BYTEA":
		return classBinary
	default:
		return classText
	}
}

func (d *PostgresDialect) ReadOnlyPrefixes() []string {
	return []string{"SELECT", "SHOW", "EXPLAIN"}
}

func (d *PostgresDialect) ListTablesQuery() (string, []any) {
	return `SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name`, nil
}

func (d *PostgresDialect) ListViewsQuery() (string, []any) {
	return `SELECT table_name FROM information_schema.views
		WHERE table_schema = 'public'
		ORDER BY table_name`, nil
}

func (d *PostgresDialect) ListFunctionsQuery() (string, []any) {
	return `SELECT routine_name FROM information_schema.routines
		WHERE routine_schema = 'public' AND routine_type = 'FUNCTION'
		ORDER BY routine_name`, nil
}

func (d *PostgresDialect) ListProceduresQuery() (string, []any) {
	return `SELECT routine_name FROM information_schema.routines
		WHERE routine_schema = 'public' AND routine_type = 'PROCEDURE'
		ORDER BY routine_name`, nil
}

func (d *PostgresDialect) ColumnsQuery(table string) (string, []any) {
	return `SELECT column_name FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`, []any{table}
}

func (d *PostgresDialect) PrimaryKeyQuery(table string) (string, []any) {
	return `SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON kcu.constraint_name = tc.constraint_name
		 AND kcu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = 'public'
		  AND tc.table_name = $1
		ORDER BY kcu.ordinal_position`, []any{table}
}

func (d *PostgresDialect) ColumnTypesQuery(table string) (string, []any) {
	return `SELECT column_name, data_type FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1`, []any{table}
}

func (d *PostgresDialect) CastExpr(placeholder, declaredType string) string {
	return fmt.Sprintf("CAST(%s AS %s)", placeholder, declaredType)
}

func (d *PostgresDialect) TextCompareExpr(quotedCol string) string {
	return fmt.Sprintf("CAST(%s AS TEXT)", quotedCol)
}

func (d *PostgresDialect) RenameTableSQL(oldQuoted, newQuoted string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", oldQuoted, newQuoted)
}

func (d *PostgresDialect) DatabasesWithSizeQuery() (string, []any) {
	return `SELECT datname, pg_database_size(datname)
		FROM pg_database
		WHERE datistemplate = false
		ORDER BY datname`, nil
}

// TablesWithSizeQuery reports sizes for the connected database; Postgres
// cannot inspect another database's tables over one connection, so the
// database argument is ignored (use_database re-targets the pool first).
func (d *PostgresDialect) TablesWithSizeQuery(database string) (string, []any) {
	return `SELECT tablename,
		pg_total_relation_size(quote_ident(schemaname) || '.' || quote_ident(tablename))
		FROM pg_tables
		WHERE schemaname = 'public'
		ORDER BY tablename`, nil
}
