package main

import (
	"fmt"
	"strings"
)

// MySQLDialect implements SQLDialect for MySQL databases.
type MySQLDialect struct{}

func (d *MySQLDialect) DriverName() string { return "mysql" }
func (d *MySQLDialect) Kind() BackendKind  { return KindMySQL }

func (d *MySQLDialect) BuildDSN(p ConnectParams, host string, port int) string {
	// user:password@tcp(host:port)/dbname
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", p.User, p.Password, host, port, p.Database)
}

func (d *MySQLDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d *MySQLDialect) Placeholder(n int) string { return "?" }

func (d *MySQLDialect) ClassifyType(dbType string) typeClass {
	t := strings.ToUpper(dbType)
	switch {
	case strings.Contains(t, "BLOB") || strings.Contains(t, "BINARY"):
		return classBinary
	case strings.Contains(t, "INT") || t == "YEAR" || t == "BIT":
		return classInt
	case t == "FLOAT" || t == "DOUBLE" || t == "DECIMAL" || t == "NUMERIC" ||
		strings.HasPrefix(t, "UNSIGNED FLOAT") || strings.HasPrefix(t, "UNSIGNED DOUBLE"):
		return classFloat
	default:
		return classText
	}
}

func (d *MySQLDialect) ReadOnlyPrefixes() []string {
	return []string{"SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN"}
}

func (d *MySQLDialect) ListTablesQuery() (string, []any) {
	return `SELECT table_name FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
		ORDER BY table_name`, nil
}

func (d *MySQLDialect) ListViewsQuery() (string, []any) {
	return `SELECT table_name FROM information_schema.views
		WHERE table_schema = DATABASE()
		ORDER BY table_name`, nil
}

func (d *MySQLDialect) ListFunctionsQuery() (string, []any) {
	return `SELECT routine_name FROM information_schema.routines
		WHERE routine_schema = DATABASE() AND routine_type = 'FUNCTION'
		ORDER BY routine_name`, nil
}

func (d *MySQLDialect) ListProceduresQuery() (string, []any) {
	return `SELECT routine_name FROM information_schema.routines
		WHERE routine_schema = DATABASE() AND routine_type = 'PROCEDURE'
		ORDER BY routine_name`, nil
}

func (d *MySQLDialect) ColumnsQuery(table string) (string, []any) {
	return `SELECT column_name FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position`, []any{table}
}

func (d *MySQLDialect) PrimaryKeyQuery(table string) (string, []any) {
	return `SELECT column_name FROM information_schema.key_column_usage
		WHERE table_schema = DATABASE() AND table_name = ? AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position`, []any{table}
}

// MySQL coerces bound text to the column type on its own, so no inline
// casting is needed.
func (d *MySQLDialect) ColumnTypesQuery(table string) (string, []any) { return "", nil }

func (d *MySQLDialect) CastExpr(placeholder, declaredType string) string { return placeholder }

func (d *MySQLDialect) TextCompareExpr(quotedCol string) string { return quotedCol }

func (d *MySQLDialect) RenameTableSQL(oldQuoted, newQuoted string) string {
	return fmt.Sprintf("RENAME TABLE %s TO %s", oldQuoted, newQuoted)
}

func (d *MySQLDialect) DatabasesWithSizeQuery() (string, []any) {
	return `SELECT s.schema_name, COALESCE(SUM(t.data_length + t.index_length), 0)
		FROM information_schema.schemata s
		LEFT JOIN information_schema.tables t ON t.table_schema = s.schema_name
		GROUP BY s.schema_name
		ORDER BY s.schema_name`, nil
}

func (d *MySQLDialect) TablesWithSizeQuery(database string) (string, []any) {
	return `SELECT table_name, COALESCE(data_length + index_length, 0)
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name`, []any{database}
}
