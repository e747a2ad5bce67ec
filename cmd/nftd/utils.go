package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/infrastructure/attestation"
	"github.com/arkade-os/nftd/pkg/client"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

// getClient builds a client for the daemon. Unset flags fall back to the
// NFTD_ prefixed environment, e.g. NFTD_PRIVATE_KEY.
func getClient(ctx *cli.Context) (*client.Client, error) {
	url := ctx.String(rpcUrlFlagName)
	if !ctx.IsSet(rpcUrlFlagName) && viper.GetString(rpcUrlFlagName) != "" {
		url = viper.GetString(rpcUrlFlagName)
	}

	privateKey := ctx.String(privateKeyFlagName)
	if privateKey == "" {
		privateKey = viper.GetString(privateKeyFlagName)
	}

	opts := make([]client.Option, 0, 1)
	if privateKey != "" {
		signer, err := attestation.NewSigner(privateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %s", err)
		}
		opts = append(opts, client.WithSigner(signer))
	}
	return client.NewClient(url, opts...)
}

func getValidator(ctx *cli.Context) (client.Signer, error) {
	key := ctx.String(validatorKeyFlagName)
	if key == "" {
		key = viper.GetString(validatorKeyFlagName)
	}
	if key == "" {
		return nil, fmt.Errorf("missing --%s", validatorKeyFlagName)
	}
	signer, err := attestation.NewSigner(key)
	if err != nil {
		return nil, fmt.Errorf("invalid validator key: %s", err)
	}
	return signer, nil
}

// signDigest signs a hex digest returned by the daemon.
func signDigest(signer client.Signer, digest string) (string, error) {
	buf, err := domain.DecodeHex(digest)
	if err != nil {
		return "", fmt.Errorf("invalid digest: %s", err)
	}
	return signer.Sign(buf)
}

func getChain(ctx *cli.Context, flagName string) (uint64, error) {
	chainId, err := domain.ParseChainId(ctx.String(flagName))
	if err != nil {
		return 0, fmt.Errorf("invalid --%s: %s", flagName, err)
	}
	return chainId, nil
}

func getRole(ctx *cli.Context) (string, error) {
	role, err := domain.ParseRole(ctx.String(roleFlag.Name))
	if err != nil {
		return "", err
	}
	return string(role), nil
}

func getItemFilter(ctx *cli.Context) (client.ItemFilter, error) {
	filter := client.ItemFilter{Owner: ctx.String(ownerFilterFlag.Name)}
	if state := ctx.String(stateFilterFlag.Name); state != "" {
		parsed, err := domain.ParseItemState(state)
		if err != nil {
			return filter, err
		}
		itemState := client.ItemState(parsed)
		filter.State = &itemState
	}
	return filter, nil
}

func chainLabel(chainId uint64) string {
	name := domain.ChainName(chainId)
	if _, ok := domain.KnownChains[name]; ok {
		return fmt.Sprintf("%s (%d)", name, chainId)
	}
	return name
}

func knownChains() []string {
	names := make([]string, 0, len(domain.KnownChains))
	for name := range domain.KnownChains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func printJSON(resp interface{}) error {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonBytes))
	return nil
}
