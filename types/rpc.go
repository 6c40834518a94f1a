package types

import "fmt"

// RPCError represents an error reported by rippled, either in a JSON-RPC
// result object or in a WebSocket response envelope
type RPCError struct {
	Code         string `json:"error"`
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Status       string `json:"status"`
	Request      any    `json:"request,omitempty"`
}

func (r *RPCError) IsError() bool {
	return r.Code != "" || r.Status == "error"
}

func (r *RPCError) Error() string {
	if r.ErrorMessage != "" {
		return fmt.Sprintf("rippled error %s: %s", r.Code, r.ErrorMessage)
	}
	return fmt.Sprintf("rippled error %s", r.Code)
}

// RemoteCode returns the rippled error token (actNotFound, invalidParams, ...)
func (r *RPCError) RemoteCode() string {
	return r.Code
}

// JSONRPCRequest is the HTTP JSON-RPC request envelope
type JSONRPCRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

func NewJSONRPCRequest(method string, params any) *JSONRPCRequest {
	if params == nil {
		params = map[string]any{}
	}
	return &JSONRPCRequest{
		Method: method,
		Params: []any{params},
	}
}

// Marker is an opaque pagination marker. rippled returns either a string or an
// object depending on the command, so it is carried as is.
type Marker = any
