package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Server speaks line-delimited JSON-RPC 2.0 over stdio, dispatching each
// request to one gateway operation. Diagnostics go to stderr; stdout carries
// only protocol frames.
type Server struct {
	gateway *Gateway
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewServer(ctx context.Context, gateway *Gateway) *Server {
	serverCtx, serverCancel := context.WithCancel(ctx)
	return &Server{
		gateway: gateway,
		ctx:     serverCtx,
		cancel:  serverCancel,
	}
}

// Run reads requests from stdin until EOF or cancellation.
func (s *Server) Run() error {
	reader := bufio.NewReader(os.Stdin)

	for {
		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		response := s.handleMessage([]byte(line))
		if response != nil {
			responseBytes, err := json.Marshal(response)
			if err != nil {
				logError("Failed to marshal response: %v", err)
				continue
			}
			fmt.Println(string(responseBytes))
		}
	}
}

func (s *Server) handleMessage(data []byte) *JSONRPCResponse {
	var req JSONRPCRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      nil,
			Error: &Error{
				Code:    ParseError,
				Message: "Parse error",
				Data:    err.Error(),
			},
		}
	}

	if req.JSONRPC != "2.0" {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &Error{
				Code:    InvalidRequest,
				Message: "Invalid JSON-RPC version",
			},
		}
	}

	return s.handleRequest(&req)
}

func (s *Server) handleRequest(req *JSONRPCRequest) *JSONRPCResponse {
	var result any
	var err *Error

	switch req.Method {
	case "connect":
		result, err = s.handleConnect(req.Params)
	case "tables/list":
		result, err = s.handleListTables(req.Params)
	case "views/list":
		result, err = s.handleListViews(req.Params)
	case "functions/list":
		result, err = s.handleListFunctions(req.Params)
	case "procedures/list":
		result, err = s.handleListProcedures(req.Params)
	case "columns/get":
		result, err = s.handleGetColumns(req.Params)
	case "primaryKey/get":
		result, err = s.handleGetPrimaryKey(req.Params)
	case "rows/count":
		result, err = s.handleGetRowCount(req.Params)
	case "rows/get":
		result, err = s.handleGetRows(req.Params)
	case "cell/update":
		result, err = s.handleUpdateCell(req.Params)
	case "row/insert":
		result, err = s.handleInsertRow(req.Params)
	case "row/delete":
		result, err = s.handleDeleteRow(req.Params)
	case "table/drop":
		result, err = s.handleDropTable(req.Params)
	case "table/rename":
		result, err = s.handleRenameTable(req.Params)
	case "sql/execute":
		result, err = s.handleExecuteRaw(req.Params)
	case "databases/list":
		result, err = s.handleListDatabases(req.Params)
	case "database/use":
		result, err = s.handleUseDatabase(req.Params)
	case "tables/sizes":
		result, err = s.handleListTableSizes(req.Params)
	case "redis/keys":
		result, err = s.handleRedisKeys(req.Params)
	case "redis/get":
		result, err = s.handleRedisGet(req.Params)
	case "redis/set":
		result, err = s.handleRedisSet(req.Params)
	case "redis/delete":
		result, err = s.handleRedisDelete(req.Params)
	case "redis/rename":
		result, err = s.handleRedisRename(req.Params)
	case "redis/ttl":
		result, err = s.handleRedisTTL(req.Params)
	case "redis/command":
		result, err = s.handleRedisCommand(req.Params)
	case "mongo/databases":
		result, err = s.handleMongoDatabases()
	case "ping":
		result = map[string]any{}
	default:
		err = &Error{
			Code:    MethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
	}

	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   err,
	}
}

// Shutdown stops the read loop.
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Close releases the gateway's connections.
func (s *Server) Close() {
	s.Shutdown()
	s.gateway.Close()
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[spectra-gateway] "+format+"\n", args...)
}
