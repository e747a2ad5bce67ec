package jsonrpcservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/hyperledger/firefly-common/pkg/fftypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	log "github.com/sirupsen/logrus"
)

const (
	maxBodySize     = 1 << 20
	requestIdHeader = "X-Request-Id"
)

type rpcServer struct {
	auth     *authenticator
	handlers map[string]RPCHandler
}

func newRPCServer(auth *authenticator) *rpcServer {
	return &rpcServer{
		auth:     auth,
		handlers: make(map[string]RPCHandler),
	}
}

func (s *rpcServer) Register(module *RPCModule) {
	for method, handler := range module.methods {
		s.handlers[method] = handler
	}
}

func (s *rpcServer) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		res.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	requestId := uuid.New().String()
	res.Header().Set(requestIdHeader, requestId)
	logger := log.WithField("request_id", requestId)

	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize))
	if err != nil {
		s.reply(res, http.StatusBadRequest, parseError(err))
		return
	}

	ctx, err := s.auth.authenticate(req.Context(), req.Header, body)
	if err != nil {
		logger.WithError(err).Debug("rejected unauthenticated request")
		s.reply(res, http.StatusUnauthorized, rpcbackend.RPCErrorResponse(
			err, fftypes.JSONAnyPtr(`"1"`), rpcbackend.RPCCodeInvalidRequest,
		))
		return
	}

	rpcRes, isOK := s.rpcHandler(ctx, logger, body)
	status := http.StatusOK
	if !isOK {
		status = http.StatusInternalServerError
	}
	s.reply(res, status, rpcRes)
}

func (s *rpcServer) reply(res http.ResponseWriter, status int, rpcRes interface{}) {
	res.Header().Set("Content-Type", "application/json; charset=utf-8")
	res.WriteHeader(status)
	_ = json.NewEncoder(res).Encode(rpcRes)
}

func (s *rpcServer) rpcHandler(
	ctx context.Context, logger *log.Entry, b []byte,
) (interface{}, bool) {
	if sniffFirstByte(b) == '[' {
		var rpcArray []*rpcbackend.RPCRequest
		if err := json.Unmarshal(b, &rpcArray); err != nil || len(rpcArray) == 0 {
			logger.Errorf("bad RPC array received %s", b)
			return parseError(err), false
		}
		return s.handleRPCBatch(ctx, logger, rpcArray)
	}

	var rpcRequest rpcbackend.RPCRequest
	if err := json.Unmarshal(b, &rpcRequest); err != nil {
		return parseError(err), false
	}
	return s.processRPC(ctx, logger, &rpcRequest)
}

func (s *rpcServer) handleRPCBatch(
	ctx context.Context, logger *log.Entry, rpcArray []*rpcbackend.RPCRequest,
) ([]*rpcbackend.RPCResponse, bool) {
	rpcResponses := make([]*rpcbackend.RPCResponse, len(rpcArray))
	results := make(chan bool)
	for i, r := range rpcArray {
		go func(i int, r *rpcbackend.RPCRequest) {
			res, ok := s.processRPC(ctx, logger, r)
			rpcResponses[i] = res
			results <- ok
		}(i, r)
	}
	failCount := 0
	for range rpcResponses {
		if ok := <-results; !ok {
			failCount++
		}
	}
	// only a batch where every request failed is a failure
	return rpcResponses, failCount != len(rpcArray)
}

func (s *rpcServer) processRPC(
	ctx context.Context, logger *log.Entry, rpcReq *rpcbackend.RPCRequest,
) (*rpcbackend.RPCResponse, bool) {
	if rpcReq.ID == nil {
		return rpcbackend.RPCErrorResponse(
			fmt.Errorf("missing request id"), rpcReq.ID, rpcbackend.RPCCodeInvalidRequest,
		), false
	}

	handler := s.handlers[rpcReq.Method]
	if handler == nil {
		return rpcbackend.RPCErrorResponse(
			fmt.Errorf("unsupported method %s", rpcReq.Method), rpcReq.ID, rpcbackend.RPCCodeInvalidRequest,
		), false
	}

	startTime := time.Now()
	logger.Debugf("RPC-> %s", rpcReq.Method)
	rpcRes := s.safeHandle(ctx, logger, handler, rpcReq)
	durationMS := float64(time.Since(startTime)) / float64(time.Millisecond)
	if rpcRes.Error != nil {
		logger.Debugf("<!RPC %s (%.2fms): %s", rpcReq.Method, durationMS, rpcRes.Error.Message)
	} else {
		logger.Debugf("<-RPC %s (%.2fms)", rpcReq.Method, durationMS)
	}
	return rpcRes, rpcRes.Error == nil
}

// safeHandle converts a panic of the handler into an internal error response.
func (s *rpcServer) safeHandle(
	ctx context.Context, logger *log.Entry, handler RPCHandler, rpcReq *rpcbackend.RPCRequest,
) (rpcRes *rpcbackend.RPCResponse) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("rpc server recovered from panic: %v", r)
			logger.Errorf("stack trace: %v", string(debug.Stack()))
			rpcRes = rpcbackend.RPCErrorResponse(
				fmt.Errorf("something went wrong"), rpcReq.ID, rpcbackend.RPCCodeInternalError,
			)
		}
	}()
	return handler(ctx, rpcReq)
}

func parseError(err error) *rpcbackend.RPCResponse {
	if err == nil {
		err = fmt.Errorf("empty batch")
	}
	return rpcbackend.RPCErrorResponse(
		fmt.Errorf("invalid request: %s", err), fftypes.JSONAnyPtr(`"1"`), rpcbackend.RPCCodeParseError,
	)
}

func sniffFirstByte(data []byte) byte {
	sniffLen := len(data)
	if sniffLen > 100 {
		sniffLen = 100
	}
	for _, b := range data[0:sniffLen] {
		if !unicode.IsSpace(rune(b)) {
			return b
		}
	}
	return 0x00
}
