package main

import (
	"encoding/json"
)

// decode unmarshals request params into the handler's shape.
func decode[T any](params json.RawMessage) (*T, *Error) {
	if params == nil {
		return nil, &Error{Code: InvalidParams, Message: "Missing parameters"}
	}
	var v T
	if err := json.Unmarshal(params, &v); err != nil {
		return nil, &Error{
			Code:    InvalidParams,
			Message: "Invalid parameters",
			Data:    err.Error(),
		}
	}
	return &v, nil
}

// opError maps a gateway failure into the protocol error shape. Every
// operation is a single attempt; the underlying driver message propagates
// as-is.
func opError(err error) *Error {
	return &Error{Code: InternalError, Message: err.Error()}
}

func (s *Server) handleConnect(params json.RawMessage) (any, *Error) {
	req, perr := decode[ConnectRequest](params)
	if perr != nil {
		return nil, perr
	}
	msg, err := s.gateway.Connect(s.ctx, req.Kind, req.ConnectParams, req.Tunnel)
	if err != nil {
		return nil, opError(err)
	}
	return msg, nil
}

func (s *Server) handleListTables(params json.RawMessage) (any, *Error) {
	req, perr := decode[KindRequest](params)
	if perr != nil {
		return nil, perr
	}
	names, err := s.gateway.ListTables(s.ctx, req.Kind)
	if err != nil {
		return nil, opError(err)
	}
	return names, nil
}

func (s *Server) handleListViews(params json.RawMessage) (any, *Error) {
	req, perr := decode[KindRequest](params)
	if perr != nil {
		return nil, perr
	}
	names, err := s.gateway.ListViews(s.ctx, req.Kind)
	if err != nil {
		return nil, opError(err)
	}
	return names, nil
}

func (s *Server) handleListFunctions(params json.RawMessage) (any, *Error) {
	req, perr := decode[KindRequest](params)
	if perr != nil {
		return nil, perr
	}
	names, err := s.gateway.ListFunctions(s.ctx, req.Kind)
	if err != nil {
		return nil, opError(err)
	}
	return names, nil
}

func (s *Server) handleListProcedures(params json.RawMessage) (any, *Error) {
	req, perr := decode[KindRequest](params)
	if perr != nil {
		return nil, perr
	}
	names, err := s.gateway.ListProcedures(s.ctx, req.Kind)
	if err != nil {
		return nil, opError(err)
	}
	return names, nil
}

func (s *Server) handleGetColumns(params json.RawMessage) (any, *Error) {
	req, perr := decode[TableRequest](params)
	if perr != nil {
		return nil, perr
	}
	cols, err := s.gateway.GetColumns(s.ctx, req.Kind, req.Table)
	if err != nil {
		return nil, opError(err)
	}
	return cols, nil
}

func (s *Server) handleGetPrimaryKey(params json.RawMessage) (any, *Error) {
	req, perr := decode[TableRequest](params)
	if perr != nil {
		return nil, perr
	}
	pk, err := s.gateway.GetPrimaryKey(s.ctx, req.Kind, req.Table)
	if err != nil {
		return nil, opError(err)
	}
	return pk, nil
}

func (s *Server) handleGetRowCount(params json.RawMessage) (any, *Error) {
	req, perr := decode[TableRequest](params)
	if perr != nil {
		return nil, perr
	}
	count, err := s.gateway.GetRowCount(s.ctx, req.Kind, req.Table)
	if err != nil {
		return nil, opError(err)
	}
	return count, nil
}

func (s *Server) handleGetRows(params json.RawMessage) (any, *Error) {
	req, perr := decode[RowsRequest](params)
	if perr != nil {
		return nil, perr
	}
	rows, err := s.gateway.GetRows(s.ctx, req.Kind, req.Table, req.Limit, req.Offset)
	if err != nil {
		return nil, opError(err)
	}
	return rows, nil
}

func (s *Server) handleUpdateCell(params json.RawMessage) (any, *Error) {
	req, perr := decode[UpdateCellRequest](params)
	if perr != nil {
		return nil, perr
	}
	affected, err := s.gateway.UpdateCell(s.ctx, req.Kind, req.Table, req.PKColumn, req.PKValue, req.Column, req.Value)
	if err != nil {
		return nil, opError(err)
	}
	return AffectedResult{Affected: affected}, nil
}

func (s *Server) handleInsertRow(params json.RawMessage) (any, *Error) {
	req, perr := decode[InsertRowRequest](params)
	if perr != nil {
		return nil, perr
	}
	affected, err := s.gateway.InsertRow(s.ctx, req.Kind, req.Table, req.Values)
	if err != nil {
		return nil, opError(err)
	}
	return AffectedResult{Affected: affected}, nil
}

func (s *Server) handleDeleteRow(params json.RawMessage) (any, *Error) {
	req, perr := decode[DeleteRowRequest](params)
	if perr != nil {
		return nil, perr
	}
	affected, err := s.gateway.DeleteRow(s.ctx, req.Kind, req.Table, req.PKColumn, req.PKValue)
	if err != nil {
		return nil, opError(err)
	}
	return AffectedResult{Affected: affected}, nil
}

func (s *Server) handleDropTable(params json.RawMessage) (any, *Error) {
	req, perr := decode[TableRequest](params)
	if perr != nil {
		return nil, perr
	}
	if err := s.gateway.DropTable(s.ctx, req.Kind, req.Table); err != nil {
		return nil, opError(err)
	}
	return "OK", nil
}

func (s *Server) handleRenameTable(params json.RawMessage) (any, *Error) {
	req, perr := decode[RenameTableRequest](params)
	if perr != nil {
		return nil, perr
	}
	if err := s.gateway.RenameTable(s.ctx, req.Kind, req.From, req.To); err != nil {
		return nil, opError(err)
	}
	return "OK", nil
}

func (s *Server) handleExecuteRaw(params json.RawMessage) (any, *Error) {
	req, perr := decode[StatementRequest](params)
	if perr != nil {
		return nil, perr
	}
	result, err := s.gateway.ExecuteRaw(s.ctx, req.Kind, req.Statement)
	if err != nil {
		return nil, opError(err)
	}
	return result, nil
}

func (s *Server) handleListDatabases(params json.RawMessage) (any, *Error) {
	req, perr := decode[KindRequest](params)
	if perr != nil {
		return nil, perr
	}
	entries, err := s.gateway.ListDatabasesWithSize(s.ctx, req.Kind)
	if err != nil {
		return nil, opError(err)
	}
	return entries, nil
}

func (s *Server) handleUseDatabase(params json.RawMessage) (any, *Error) {
	req, perr := decode[DatabaseRequest](params)
	if perr != nil {
		return nil, perr
	}
	msg, err := s.gateway.UseDatabase(s.ctx, req.Kind, req.Database)
	if err != nil {
		return nil, opError(err)
	}
	return msg, nil
}

func (s *Server) handleListTableSizes(params json.RawMessage) (any, *Error) {
	req, perr := decode[DatabaseRequest](params)
	if perr != nil {
		return nil, perr
	}
	entries, err := s.gateway.ListTablesWithSize(s.ctx, req.Kind, req.Database)
	if err != nil {
		return nil, opError(err)
	}
	return entries, nil
}

func (s *Server) handleRedisKeys(params json.RawMessage) (any, *Error) {
	req, perr := decode[PatternRequest](params)
	if perr != nil {
		return nil, perr
	}
	keys, err := s.gateway.RedisListKeys(s.ctx, req.Pattern)
	if err != nil {
		return nil, opError(err)
	}
	return keys, nil
}

func (s *Server) handleRedisGet(params json.RawMessage) (any, *Error) {
	req, perr := decode[KeyRequest](params)
	if perr != nil {
		return nil, perr
	}
	value, err := s.gateway.RedisGetValue(s.ctx, req.Key)
	if err != nil {
		return nil, opError(err)
	}
	return value, nil
}

func (s *Server) handleRedisSet(params json.RawMessage) (any, *Error) {
	req, perr := decode[SetStringRequest](params)
	if perr != nil {
		return nil, perr
	}
	if err := s.gateway.RedisSetString(s.ctx, req.Key, req.Value); err != nil {
		return nil, opError(err)
	}
	return "OK", nil
}

func (s *Server) handleRedisDelete(params json.RawMessage) (any, *Error) {
	req, perr := decode[KeyRequest](params)
	if perr != nil {
		return nil, perr
	}
	if err := s.gateway.RedisDeleteKey(s.ctx, req.Key); err != nil {
		return nil, opError(err)
	}
	return "OK", nil
}

func (s *Server) handleRedisRename(params json.RawMessage) (any, *Error) {
	req, perr := decode[RenameKeyRequest](params)
	if perr != nil {
		return nil, perr
	}
	if err := s.gateway.RedisRenameKey(s.ctx, req.From, req.To); err != nil {
		return nil, opError(err)
	}
	return "OK", nil
}

func (s *Server) handleRedisTTL(params json.RawMessage) (any, *Error) {
	req, perr := decode[KeyRequest](params)
	if perr != nil {
		return nil, perr
	}
	ttl, err := s.gateway.RedisTTL(s.ctx, req.Key)
	if err != nil {
		return nil, opError(err)
	}
	return ttl, nil
}

func (s *Server) handleRedisCommand(params json.RawMessage) (any, *Error) {
	req, perr := decode[CommandRequest](params)
	if perr != nil {
		return nil, perr
	}
	reply, err := s.gateway.RedisExecuteRaw(s.ctx, req.Command)
	if err != nil {
		return nil, opError(err)
	}
	return reply, nil
}

func (s *Server) handleMongoDatabases() (any, *Error) {
	names, err := s.gateway.MongoListDatabases(s.ctx)
	if err != nil {
		return nil, opError(err)
	}
	return names, nil
}
