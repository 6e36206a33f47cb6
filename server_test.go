package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(context.Background(), NewGateway(0, 0, 0))
	t.Cleanup(s.Close)
	return s
}

func call(t *testing.T, s *Server, method string, params any) *JSONRPCResponse {
	t.Helper()

	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		req["params"] = params
	}
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return s.handleMessage(data)
}

func TestServerRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleMessage([]byte("{not json"))
	if resp.Error == nil || resp.Error.Code != ParseError {
		t.Errorf("Expected parse error, got %+v", resp)
	}
}

func TestServerRejectsWrongVersion(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleMessage([]byte(`{"jsonrpc":"1.0","id":1,"method":"ping"}`))
	if resp.Error == nil || resp.Error.Code != InvalidRequest {
		t.Errorf("Expected invalid request, got %+v", resp)
	}
}

func TestServerUnknownMethod(t *testing.T) {
	s := newTestServer(t)

	resp := call(t, s, "tables/explode", map[string]any{"kind": "mysql"})
	if resp.Error == nil || resp.Error.Code != MethodNotFound {
		t.Errorf("Expected method not found, got %+v", resp)
	}
}

func TestServerPing(t *testing.T) {
	s := newTestServer(t)

	resp := call(t, s, "ping", nil)
	if resp.Error != nil {
		t.Errorf("Expected success, got %+v", resp.Error)
	}
}

func TestServerMissingParams(t *testing.T) {
	s := newTestServer(t)

	resp := call(t, s, "tables/list", nil)
	if resp.Error == nil || resp.Error.Code != InvalidParams {
		t.Errorf("Expected invalid params, got %+v", resp)
	}
}

func TestServerNotConnected(t *testing.T) {
	s := newTestServer(t)

	// Every backend operation fails the same way before a connect.
	calls := []struct {
		method string
		params any
	}{
		{"tables/list", KindRequest{Kind: KindMySQL}},
		{"rows/get", RowsRequest{Kind: KindPostgres, Table: "t", Limit: 10}},
		{"sql/execute", StatementRequest{Kind: KindSQLite, Statement: "SELECT 1"}},
		{"redis/keys", PatternRequest{Pattern: "*"}},
		{"mongo/databases", map[string]any{}},
	}

	for _, tc := range calls {
		t.Run(tc.method, func(t *testing.T) {
			resp := call(t, s, tc.method, tc.params)
			if resp.Error == nil {
				t.Fatalf("Expected error, got result %v", resp.Result)
			}
			if !strings.Contains(resp.Error.Message, "not connected") {
				t.Errorf("Expected not-connected error, got %q", resp.Error.Message)
			}
		})
	}
}

// TestServerSQLiteLifecycle drives connect and a few operations end to end
// through the protocol layer against a real database file.
func TestServerSQLiteLifecycle(t *testing.T) {
	s := newTestServer(t)

	path := filepath.Join(t.TempDir(), "app.db")
	resp := call(t, s, "connect", ConnectRequest{
		Kind:          KindSQLite,
		ConnectParams: ConnectParams{Path: path},
	})
	if resp.Error != nil {
		t.Fatalf("connect: %+v", resp.Error)
	}

	resp = call(t, s, "sql/execute", StatementRequest{
		Kind:      KindSQLite,
		Statement: "CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)",
	})
	if resp.Error != nil {
		t.Fatalf("create table: %+v", resp.Error)
	}

	resp = call(t, s, "row/insert", InsertRowRequest{
		Kind:   KindSQLite,
		Table:  "notes",
		Values: map[string]any{"id": float64(1), "body": "hello"},
	})
	if resp.Error != nil {
		t.Fatalf("insert: %+v", resp.Error)
	}

	resp = call(t, s, "tables/list", KindRequest{Kind: KindSQLite})
	if resp.Error != nil {
		t.Fatalf("tables/list: %+v", resp.Error)
	}
	names, ok := resp.Result.([]string)
	if !ok || len(names) != 1 || names[0] != "notes" {
		t.Errorf("Expected [notes], got %v", resp.Result)
	}

	resp = call(t, s, "rows/count", TableRequest{Kind: KindSQLite, Table: "notes"})
	if resp.Error != nil {
		t.Fatalf("rows/count: %+v", resp.Error)
	}
	if count, ok := resp.Result.(int64); !ok || count != 1 {
		t.Errorf("Expected count 1, got %v", resp.Result)
	}

	resp = call(t, s, "primaryKey/get", TableRequest{Kind: KindSQLite, Table: "notes"})
	if resp.Error != nil {
		t.Fatalf("primaryKey/get: %+v", resp.Error)
	}
	if resp.Result != "id" {
		t.Errorf("Expected primary key id, got %v", resp.Result)
	}

	resp = call(t, s, "rows/get", RowsRequest{Kind: KindSQLite, Table: "notes", Limit: 10})
	if resp.Error != nil {
		t.Fatalf("rows/get: %+v", resp.Error)
	}
	rows, ok := resp.Result.(*RowsResult)
	if !ok || len(rows.Rows) != 1 || rows.Rows[0]["body"] != "hello" {
		t.Errorf("Unexpected rows result: %v", resp.Result)
	}

	// Views are out of scope for the embedded engine; the operation fails
	// cleanly instead of panicking.
	resp = call(t, s, "views/list", KindRequest{Kind: KindSQLite})
	if resp.Error == nil {
		t.Error("Expected error for views/list on sqlite")
	}
}

func TestServerUseDatabaseUnsupportedForSQLite(t *testing.T) {
	s := newTestServer(t)

	path := filepath.Join(t.TempDir(), "app.db")
	resp := call(t, s, "connect", ConnectRequest{
		Kind:          KindSQLite,
		ConnectParams: ConnectParams{Path: path},
	})
	if resp.Error != nil {
		t.Fatalf("connect: %+v", resp.Error)
	}

	resp = call(t, s, "database/use", DatabaseRequest{Kind: KindSQLite, Database: "other"})
	if resp.Error == nil {
		t.Error("Expected error for database/use on sqlite")
	}
}
