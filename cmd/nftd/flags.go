package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const (
	rpcUrlFlagName       = "rpc-url"
	privateKeyFlagName   = "private-key"
	validatorKeyFlagName = "validator-key"

	defaultRpcUrl = "http://127.0.0.1:7170"
)

var (
	rpcUrlFlag = &cli.StringFlag{
		Name:  rpcUrlFlagName,
		Usage: "the url of the nftd JSON-RPC interface",
		Value: defaultRpcUrl,
	}
	privateKeyFlag = &cli.StringFlag{
		Name:  privateKeyFlagName,
		Usage: "hex private key signing the requests, unsigned requests can only read",
	}
	validatorKeyFlag = &cli.StringFlag{
		Name:  validatorKeyFlagName,
		Usage: "hex private key of the bridge validator attesting the swap",
	}
	itemIdFlag = &cli.Uint64Flag{
		Name:     "item-id",
		Usage:    "id of the marketplace item",
		Required: true,
	}
	assetIdFlag = &cli.Uint64Flag{
		Name:     "asset-id",
		Usage:    "id of the asset",
		Required: true,
	}
	fromFlag = &cli.StringFlag{
		Name:     "from",
		Usage:    "address of the current owner",
		Required: true,
	}
	toFlag = &cli.StringFlag{
		Name:     "to",
		Usage:    "recipient address",
		Required: true,
	}
	ownerFlag = &cli.StringFlag{
		Name:     "owner",
		Usage:    "owner address",
		Required: true,
	}
	accountFlag = &cli.StringFlag{
		Name:     "account",
		Usage:    "account address",
		Required: true,
	}
	spenderFlag = &cli.StringFlag{
		Name:     "spender",
		Usage:    "address allowed to spend",
		Required: true,
	}
	operatorFlag = &cli.StringFlag{
		Name:  "operator",
		Usage: "address approved for every asset of the caller",
	}
	approvedFlag = &cli.StringFlag{
		Name:  "approved",
		Usage: "address approved for a single asset",
	}
	revokeFlag = &cli.BoolFlag{
		Name:  "revoke",
		Usage: "revoke instead of granting the approval",
	}
	amountFlag = &cli.Uint64Flag{
		Name:     "amount",
		Usage:    "amount of currency",
		Required: true,
	}
	saleAmountFlag = &cli.Uint64Flag{
		Name:  "sale-amount",
		Usage: "sale amount the royalty is computed on, triggers a royalty payout when set",
	}
	priceFlag = &cli.Uint64Flag{
		Name:     "price",
		Usage:    "sale price",
		Required: true,
	}
	minPriceFlag = &cli.Uint64Flag{
		Name:     "min-price",
		Usage:    "min price of the auction, bids must be strictly higher",
		Required: true,
	}
	durationFlag = &cli.Int64Flag{
		Name:     "duration",
		Usage:    "duration of the auction in seconds",
		Required: true,
	}
	uriFlag = &cli.StringFlag{
		Name:     "uri",
		Usage:    "metadata uri, the base uri of the daemon is prepended",
		Required: true,
	}
	feeFlag = &cli.UintFlag{
		Name:  "fee-bps",
		Usage: "royalty fee in basis points",
	}
	royaltyRecipientFlag = &cli.StringFlag{
		Name:  "royalty-recipient",
		Usage: "recipient of the royalty, defaults to the owner",
	}
	roleFlag = &cli.StringFlag{
		Name:     "role",
		Usage:    "one of ADMIN | MINTER | ARTIST | BRIDGE | VALIDATOR",
		Required: true,
	}
	chainFlag = &cli.StringFlag{
		Name:     "chain",
		Usage:    "chain id or name",
		Required: true,
	}
	disallowFlag = &cli.BoolFlag{
		Name:  "disallow",
		Usage: "remove the chain from the allowed destinations",
	}
	chainFromFlag = &cli.StringFlag{
		Name:     "chain-from",
		Usage:    "source chain id or name",
		Required: true,
	}
	chainToFlag = &cli.StringFlag{
		Name:     "chain-to",
		Usage:    "destination chain id or name",
		Required: true,
	}
	originChainFlag = &cli.StringFlag{
		Name:     "origin-chain",
		Usage:    "chain id or name where the asset was minted",
		Required: true,
	}
	recipientFlag = &cli.StringFlag{
		Name:     "recipient",
		Usage:    "recipient address",
		Required: true,
	}
	senderFlag = &cli.StringFlag{
		Name:     "sender",
		Usage:    "address of the swap sender",
		Required: true,
	}
	nonceFlag = &cli.Uint64Flag{
		Name:     "nonce",
		Usage:    "nonce distinguishing swaps of the same asset",
		Required: true,
	}
	signatureFlag = &cli.StringFlag{
		Name:  "signature",
		Usage: "validator signature of the swap digest",
	}
	payloadFlag = &cli.StringFlag{
		Name:     "payload",
		Usage:    "JSON encoded swap payload emitted by the source chain",
		Required: true,
	}
	digestFlag = &cli.StringFlag{
		Name:     "digest",
		Usage:    "hex digest of the swap",
		Required: true,
	}
	topicFlag = &cli.StringFlag{
		Name:  "topic",
		Usage: "event topic: item | swap",
		Value: "item",
	}
	aggregateIdFlag = &cli.StringFlag{
		Name:     "id",
		Usage:    "item id for the item topic, swap digest for the swap topic",
		Required: true,
	}
	stateFilterFlag = &cli.StringFlag{
		Name:  "state",
		Usage: "filter items by state: IDLE | FOR_SALE | LOCKED | IN_AUCTION",
	}
	ownerFilterFlag = &cli.StringFlag{
		Name:  "owner",
		Usage: "filter items by owner",
	}
	allowedFlag = &cli.BoolFlag{
		Name:  "allowed",
		Usage: fmt.Sprintf("also show the destinations allowed by the daemon at --%s", rpcUrlFlagName),
	}
)

// withClientFlags adds the connection flags to a client command.
func withClientFlags(flags ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{rpcUrlFlag, privateKeyFlag}, flags...)
}
