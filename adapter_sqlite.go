package main

import (
	"fmt"
	"strings"
)

// SQLiteDialect implements SQLDialect for SQLite database files.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string { return "sqlite" }
func (d *SQLiteDialect) Kind() BackendKind  { return KindSQLite }

// BuildDSN returns the database file path; host/port do not apply to an
// embedded engine.
func (d *SQLiteDialect) BuildDSN(p ConnectParams, host string, port int) string {
	return p.Path
}

func (d *SQLiteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *SQLiteDialect) Placeholder(n int) string { return "?" }

// ClassifyType works on declared column types, which in SQLite are
// free-form. The contains-checks mirror SQLite's own type affinity rules.
func (d *SQLiteDialect) ClassifyType(dbType string) typeClass {
	t := strings.ToUpper(dbType)
	switch {
	case strings.Contains(t, "BOOL"):
		return classBool
	case strings.Contains(t, "INT"):
		return classInt
	case strings.Contains(t, "REAL") || strings.Contains(t, "FLOA") ||
		strings.Contains(t, "DOUB") || strings.Contains(t, "NUMERIC") ||
		strings.Contains(t, "DECIMAL"):
		return classFloat
	case strings.Contains(t, "BLOB"):
		return classBinary
	default:
		return classText
	}
}

func (d *SQLiteDialect) ReadOnlyPrefixes() []string {
	return []string{"SELECT", "EXPLAIN", "PRAGMA"}
}

func (d *SQLiteDialect) ListTablesQuery() (string, []any) {
	// SQLite has no information_schema. Use sqlite_master.
	return `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`, nil
}

// SQLite has no server-side view/function/procedure catalog in this
// gateway's scope.
func (d *SQLiteDialect) ListViewsQuery() (string, []any) { return "", nil }

func (d *SQLiteDialect) ListFunctionsQuery() (string, []any) { return "", nil }

func (d *SQLiteDialect) ListProceduresQuery() (string, []any) { return "", nil }

func (d *SQLiteDialect) ColumnsQuery(table string) (string, []any) {
	return `SELECT name FROM pragma_table_info(?) ORDER BY cid`, []any{table}
}

func (d *SQLiteDialect) PrimaryKeyQuery(table string) (string, []any) {
	return `SELECT name FROM pragma_table_info(?) WHERE pk > 0 ORDER BY pk`, []any{table}
}

// SQLite's flexible typing coerces bound text on its own.
func (d *SQLiteDialect) ColumnTypesQuery(table string) (string, []any) { return "", nil }

func (d *SQLiteDialect) CastExpr(placeholder, declaredType string) string { return placeholder }

func (d *SQLiteDialect) TextCompareExpr(quotedCol string) string { return quotedCol }

func (d *SQLiteDialect) RenameTableSQL(oldQuoted, newQuoted string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", oldQuoted, newQuoted)
}

func (d *SQLiteDialect) DatabasesWithSizeQuery() (string, []any) { return "", nil }

func (d *SQLiteDialect) TablesWithSizeQuery(database string) (string, []any) { return "", nil }
