package main

// SQLDialect defines the contract for database-specific behavior.
// Each supported engine (MySQL, PostgreSQL, SQLite) implements this
// interface; the generic operations in sqlops.go do the rest.
type SQLDialect interface {
	// DriverName returns the database/sql driver name (e.g., "mysql", "postgres", "sqlite").
	DriverName() string

	// Kind returns the backend kind this dialect serves.
	Kind() BackendKind

	// BuildDSN constructs a driver DSN from connect parameters. The address
	// may differ from params when the connection goes through a tunnel.
	BuildDSN(p ConnectParams, host string, port int) string

	// QuoteIdent quotes an identifier with the dialect's quoting convention,
	// doubling any embedded quote characters.
	QuoteIdent(name string) string

	// Placeholder returns the bind marker for the 1-based position n.
	Placeholder(n int) string

	// ClassifyType maps a driver-reported column type name onto a type class.
	ClassifyType(dbType string) typeClass

	// ReadOnlyPrefixes lists the leading keywords that classify a raw
	// statement as a query rather than a mutation.
	ReadOnlyPrefixes() []string

	// ListTablesQuery returns the catalog query for base tables.
	ListTablesQuery() (string, []any)

	// ListViewsQuery, ListFunctionsQuery, ListProceduresQuery return the
	// analogous catalog queries, or "" when the dialect has no such catalog.
	ListViewsQuery() (string, []any)
	ListFunctionsQuery() (string, []any)
	ListProceduresQuery() (string, []any)

	// ColumnsQuery returns column names for a table in declared order.
	ColumnsQuery(table string) (string, []any)

	// PrimaryKeyQuery returns the primary-key column names for a table in
	// key order. A single result row means a usable single-column key.
	PrimaryKeyQuery(table string) (string, []any)

	// ColumnTypesQuery returns (column name, declared type) pairs for a
	// table, or "" for dialects that do not cast bound values inline.
	ColumnTypesQuery(table string) (string, []any)

	// CastExpr wraps a placeholder in a cast to the declared type for
	// dialects with inline casting; others return the placeholder unchanged.
	CastExpr(placeholder, declaredType string) string

	// TextCompareExpr returns the expression used to compare the quoted
	// primary-key column against a text-bound value.
	TextCompareExpr(quotedCol string) string

	// RenameTableSQL returns the rename statement for pre-quoted names.
	RenameTableSQL(oldQuoted, newQuoted string) string

	// DatabasesWithSizeQuery returns (name, byte size) rows for every
	// database the server knows, or "" when unsupported.
	DatabasesWithSizeQuery() (string, []any)

	// TablesWithSizeQuery returns (name, byte size) rows for the tables of
	// a database, or "" when unsupported.
	TablesWithSizeQuery(database string) (string, []any)
}
