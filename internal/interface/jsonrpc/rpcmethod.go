package jsonrpcservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	nfterrors "github.com/arkade-os/nftd/pkg/errors"
	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	log "github.com/sirupsen/logrus"
)

// AppErrorCodeBase is the JSON-RPC code of INTERNAL_ERROR. Application
// error codes count down from it.
const AppErrorCodeBase = -32000

type RPCHandler func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse

func RPCMethod0[R any](impl func(ctx context.Context) (R, error)) RPCHandler {
	return func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse {
		var result R
		code, err := parseParams(req)
		if err == nil {
			result, err = impl(ctx)
		}
		return mapResponse(req, result, code, err)
	}
}

func RPCMethod1[R any, P0 any](impl func(ctx context.Context, param0 P0) (R, error)) RPCHandler {
	return func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse {
		var result R
		param0 := new(P0)
		code, err := parseParams(req, param0)
		if err == nil {
			result, err = impl(ctx, *param0)
		}
		return mapResponse(req, result, code, err)
	}
}

func RPCMethod2[R any, P0 any, P1 any](
	impl func(ctx context.Context, param0 P0, param1 P1) (R, error),
) RPCHandler {
	return func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse {
		var result R
		param0 := new(P0)
		param1 := new(P1)
		code, err := parseParams(req, param0, param1)
		if err == nil {
			result, err = impl(ctx, *param0, *param1)
		}
		return mapResponse(req, result, code, err)
	}
}

func RPCMethod3[R any, P0 any, P1 any, P2 any](
	impl func(ctx context.Context, param0 P0, param1 P1, param2 P2) (R, error),
) RPCHandler {
	return func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse {
		var result R
		param0 := new(P0)
		param1 := new(P1)
		param2 := new(P2)
		code, err := parseParams(req, param0, param1, param2)
		if err == nil {
			result, err = impl(ctx, *param0, *param1, *param2)
		}
		return mapResponse(req, result, code, err)
	}
}

func RPCMethod4[R any, P0 any, P1 any, P2 any, P3 any](
	impl func(ctx context.Context, param0 P0, param1 P1, param2 P2, param3 P3) (R, error),
) RPCHandler {
	return func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse {
		var result R
		param0 := new(P0)
		param1 := new(P1)
		param2 := new(P2)
		param3 := new(P3)
		code, err := parseParams(req, param0, param1, param2, param3)
		if err == nil {
			result, err = impl(ctx, *param0, *param1, *param2, *param3)
		}
		return mapResponse(req, result, code, err)
	}
}

func RPCMethod5[R any, P0 any, P1 any, P2 any, P3 any, P4 any](
	impl func(ctx context.Context, param0 P0, param1 P1, param2 P2, param3 P3, param4 P4) (R, error),
) RPCHandler {
	return func(ctx context.Context, req *rpcbackend.RPCRequest) *rpcbackend.RPCResponse {
		var result R
		param0 := new(P0)
		param1 := new(P1)
		param2 := new(P2)
		param3 := new(P3)
		param4 := new(P4)
		code, err := parseParams(req, param0, param1, param2, param3, param4)
		if err == nil {
			result, err = impl(ctx, *param0, *param1, *param2, *param3, *param4)
		}
		return mapResponse(req, result, code, err)
	}
}

func parseParams(req *rpcbackend.RPCRequest, params ...interface{}) (rpcbackend.RPCCode, error) {
	if len(req.Params) != len(params) {
		return rpcbackend.RPCCodeInvalidRequest, fmt.Errorf(
			"method %s expects %d params, got %d", req.Method, len(params), len(req.Params),
		)
	}
	for i := range params {
		if err := json.Unmarshal(req.Params[i].Bytes(), params[i]); err != nil {
			return rpcbackend.RPCCodeInvalidRequest, fmt.Errorf(
				"invalid param %d of method %s: %s", i, req.Method, err,
			)
		}
	}
	return 0, nil
}

func mapResponse(
	req *rpcbackend.RPCRequest, result interface{}, code rpcbackend.RPCCode, err error,
) *rpcbackend.RPCResponse {
	if err == nil {
		b, marshalErr := json.Marshal(result)
		if marshalErr == nil {
			return &rpcbackend.RPCResponse{
				JSONRpc: "2.0",
				ID:      req.ID,
				Result:  fftypes.JSONAnyPtrBytes(b),
			}
		}
		err = fmt.Errorf("failed to serialize result of %s: %s", req.Method, marshalErr)
	}
	if code == 0 {
		code = errorCode(err)
	}
	return rpcbackend.RPCErrorResponse(err, req.ID, code)
}

// errorCode maps typed application errors to -32000 - code.
func errorCode(err error) rpcbackend.RPCCode {
	var typed nfterrors.Error
	if !errors.As(err, &typed) {
		return rpcbackend.RPCCodeInternalError
	}
	if typed.Code() == nfterrors.INTERNAL_ERROR.Code {
		typed.Log().Error(typed.Error())
	} else {
		log.WithField("name", typed.CodeName()).Debug(typed.Error())
	}
	return rpcbackend.RPCCode(AppErrorCodeBase - int64(typed.Code()))
}
