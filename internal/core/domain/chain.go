package domain

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var KnownChains = map[string]uint64{
	"ganache":     1337,
	"goerli":      5,
	"hardhat":     31337,
	"kovan":       42,
	"mainnet":     1,
	"bsc_testnet": 97,
	"rinkeby":     4,
	"ropsten":     3,
}

// ParseChainId accepts either a numeric chain id or one of the KnownChains names.
func ParseChainId(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if id, ok := KnownChains[strings.ToLower(s)]; ok {
		return id, nil
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("unknown chain %q", s)
	}
	return id, nil
}

func ChainName(id uint64) string {
	names := make([]string, 0, len(KnownChains))
	for name := range KnownChains {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if KnownChains[name] == id {
			return name
		}
	}
	return strconv.FormatUint(id, 10)
}

type AllowedChain struct {
	ChainId   uint64
	Allowed   bool
	UpdatedAt int64
}

type ChainRepository interface {
	SetAllowedChain(ctx context.Context, chain AllowedChain) error
	IsChainAllowed(ctx context.Context, chainId uint64) (bool, error)
	GetAllowedChains(ctx context.Context) ([]AllowedChain, error)
	Close()
}
