package jsonrpcservice

import (
	"fmt"
	"strings"
)

type RPCModule struct {
	group   string
	methods map[string]RPCHandler
}

func NewRPCModule(prefix string) *RPCModule {
	return &RPCModule{
		group:   strings.SplitN(prefix, "_", 2)[0],
		methods: map[string]RPCHandler{},
	}
}

// Add registers a method named group_function. Methods of one module share
// the group prefix.
func (m *RPCModule) Add(method string, handler RPCHandler) *RPCModule {
	prefix := m.group + "_"
	if !strings.HasPrefix(method, prefix) {
		panic(fmt.Sprintf("invalid prefix %s (expected=%s)", method, prefix))
	}
	if m.methods[method] != nil {
		panic(fmt.Sprintf("duplicate method: %s", method))
	}
	m.methods[method] = handler
	return m
}
