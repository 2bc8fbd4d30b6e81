package rpc

import (
	"errors"

	"xrpl-crypto/go-core/internal/keyservice"
	"xrpl-crypto/go-core/pkg/keys"
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeCryptoFailed   = -32000
	codeUnsupported    = -32010
	codeRateLimited    = -32029
	codeUnavailable    = -32099
)

func rpcInvalidParams() *rpcError {
	return &rpcError{Code: codeInvalidParams, Message: "invalid params"}
}

// rpcServiceError maps key service failures onto stable codes. Messages come
// from sentinel errors and never carry key material.
func rpcServiceError(err error) *rpcError {
	switch {
	case errors.Is(err, keyservice.ErrInvalidKeyID):
		return &rpcError{Code: codeInvalidParams, Message: err.Error()}
	case errors.Is(err, keyservice.ErrRateLimited):
		return &rpcError{Code: codeRateLimited, Message: err.Error()}
	case errors.Is(err, keyservice.ErrClosed):
		return &rpcError{Code: codeUnavailable, Message: err.Error()}
	case errors.Is(err, keys.ErrUnsupportedAlgorithm):
		return &rpcError{Code: codeUnsupported, Message: err.Error()}
	default:
		return &rpcError{Code: codeCryptoFailed, Message: "crypto operation failed"}
	}
}
