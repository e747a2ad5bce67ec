package main

import (
	"encoding/json"
	"fmt"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/pkg/client"
	"github.com/urfave/cli/v2"
)

var optionalAssetIdFlag = &cli.Uint64Flag{
	Name:  "asset-id",
	Usage: "id of the asset, required unless --operator is set",
}

var (
	nftCommand = cli.Command{
		Name:  "nft",
		Usage: "Manage the assets of the registry",
		Subcommands: []*cli.Command{
			{
				Name:  "mint",
				Usage: "Mint a new asset, requires the MINTER role",
				Flags: withClientFlags(
					ownerFlag, uriFlag, feeFlag, royaltyRecipientFlag,
				),
				Action: nftMint,
			},
			{
				Name:   "transfer",
				Usage:  "Transfer an asset, optionally paying the royalty of a sale",
				Flags:  withClientFlags(fromFlag, toFlag, assetIdFlag, saleAmountFlag),
				Action: nftTransfer,
			},
			{
				Name:   "approve",
				Usage:  "Approve an address for one asset or an operator for all of them",
				Flags:  withClientFlags(optionalAssetIdFlag, approvedFlag, operatorFlag, revokeFlag),
				Action: nftApprove,
			},
			{
				Name:   "owner",
				Usage:  "Show the owner and the approved address of an asset",
				Flags:  withClientFlags(assetIdFlag),
				Action: nftOwner,
			},
			{
				Name:   "balance",
				Usage:  "Show the assets of an owner",
				Flags:  withClientFlags(ownerFlag),
				Action: nftBalance,
			},
			{
				Name:   "uri",
				Usage:  "Show the metadata uri of an asset",
				Flags:  withClientFlags(assetIdFlag),
				Action: nftURI,
			},
			{
				Name:   "royalty",
				Usage:  "Show the royalty of an asset",
				Flags:  withClientFlags(assetIdFlag),
				Action: nftRoyalty,
			},
		},
	}

	marketCommand = cli.Command{
		Name:  "market",
		Usage: "Trade the items of the marketplace",
		Subcommands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "Show the marketplace settings and service accounts",
				Flags:  withClientFlags(),
				Action: marketInfo,
			},
			{
				Name:   "create",
				Usage:  "Create an item, requires the ARTIST role",
				Flags:  withClientFlags(uriFlag, feeFlag),
				Action: marketCreate,
			},
			{
				Name:   "start-sale",
				Usage:  "List an item at a fixed price",
				Flags:  withClientFlags(itemIdFlag, priceFlag),
				Action: marketStartSale,
			},
			{
				Name:   "stop-sale",
				Usage:  "Withdraw an item from sale",
				Flags:  withClientFlags(itemIdFlag),
				Action: marketStopSale,
			},
			{
				Name:   "buy",
				Usage:  "Buy an item listed for sale",
				Flags:  withClientFlags(itemIdFlag),
				Action: marketBuy,
			},
			{
				Name:   "start-auction",
				Usage:  "Auction an item",
				Flags:  withClientFlags(itemIdFlag, minPriceFlag, durationFlag),
				Action: marketStartAuction,
			},
			{
				Name:   "bid",
				Usage:  "Bid on an auctioned item",
				Flags:  withClientFlags(itemIdFlag, amountFlag),
				Action: marketBid,
			},
			{
				Name:   "settle",
				Usage:  "Settle an ended auction",
				Flags:  withClientFlags(itemIdFlag),
				Action: marketSettle,
			},
			{
				Name:   "item",
				Usage:  "Show an item",
				Flags:  withClientFlags(itemIdFlag),
				Action: marketItem,
			},
			{
				Name:   "auction",
				Usage:  "Show the auction of an item",
				Flags:  withClientFlags(itemIdFlag),
				Action: marketAuction,
			},
			{
				Name:   "items",
				Usage:  "List items by owner and state",
				Flags:  withClientFlags(ownerFilterFlag, stateFilterFlag),
				Action: marketItems,
			},
		},
	}

	bridgeCommand = cli.Command{
		Name:  "bridge",
		Usage: "Move items across chains",
		Subcommands: []*cli.Command{
			{
				Name:   "allow",
				Usage:  "Allow a destination chain, requires the ADMIN role",
				Flags:  withClientFlags(chainFlag, disallowFlag),
				Action: bridgeAllow,
			},
			{
				Name:  "swap",
				Usage: "Lock an item and emit the swap payload for the destination chain",
				Flags: withClientFlags(
					chainToFlag, recipientFlag, itemIdFlag, nonceFlag, signatureFlag, validatorKeyFlag,
				),
				Action: bridgeSwap,
			},
			{
				Name:   "redeem",
				Usage:  "Redeem a swap payload on the destination chain",
				Flags:  withClientFlags(payloadFlag),
				Action: bridgeRedeem,
			},
			{
				Name:  "sign",
				Usage: "Sign a swap digest with the validator key",
				Flags: withClientFlags(
					chainFromFlag, chainToFlag, senderFlag, recipientFlag, assetIdFlag,
					originChainFlag, nonceFlag, validatorKeyFlag,
				),
				Action: bridgeSign,
			},
			{
				Name:  "digest",
				Usage: "Compute a swap digest",
				Flags: withClientFlags(
					chainFromFlag, chainToFlag, senderFlag, recipientFlag, assetIdFlag,
					originChainFlag, nonceFlag,
				),
				Action: bridgeDigest,
			},
			{
				Name:   "status",
				Usage:  "Show a swap",
				Flags:  withClientFlags(digestFlag),
				Action: bridgeStatus,
			},
		},
	}

	tokenCommand = cli.Command{
		Name:  "token",
		Usage: "Manage the marketplace currency",
		Subcommands: []*cli.Command{
			{
				Name:   "balance",
				Usage:  "Show the balance of an account",
				Flags:  withClientFlags(accountFlag),
				Action: tokenBalance,
			},
			{
				Name:   "transfer",
				Usage:  "Transfer currency",
				Flags:  withClientFlags(toFlag, amountFlag),
				Action: tokenTransfer,
			},
			{
				Name:   "approve",
				Usage:  "Allow a spender, e.g. the market account, to move currency",
				Flags:  withClientFlags(spenderFlag, amountFlag),
				Action: tokenApprove,
			},
			{
				Name:   "allowance",
				Usage:  "Show the allowance of a spender",
				Flags:  withClientFlags(ownerFlag, spenderFlag),
				Action: tokenAllowance,
			},
			{
				Name:   "mint",
				Usage:  "Mint currency, requires the ADMIN role",
				Flags:  withClientFlags(toFlag, amountFlag),
				Action: tokenMint,
			},
		},
	}

	adminCommand = cli.Command{
		Name:  "admin",
		Usage: "Manage roles",
		Subcommands: []*cli.Command{
			{
				Name:   "grant",
				Usage:  "Grant a role",
				Flags:  withClientFlags(accountFlag, roleFlag),
				Action: adminGrant,
			},
			{
				Name:   "revoke",
				Usage:  "Revoke a role",
				Flags:  withClientFlags(accountFlag, roleFlag),
				Action: adminRevoke,
			},
			{
				Name:   "roles",
				Usage:  "Show the roles of an account",
				Flags:  withClientFlags(accountFlag),
				Action: adminRoles,
			},
		},
	}

	eventsCommand = cli.Command{
		Name:   "events",
		Usage:  "Show the events of an item or of a swap",
		Flags:  withClientFlags(topicFlag, aggregateIdFlag),
		Action: listEvents,
	}

	chainsCommand = cli.Command{
		Name:   "chains",
		Usage:  "Show the known chain names",
		Flags:  withClientFlags(allowedFlag),
		Action: listChains,
	}
)

func nftMint(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	owner := ctx.String(ownerFlag.Name)
	recipient := ctx.String(royaltyRecipientFlag.Name)
	if recipient == "" {
		recipient = owner
	}
	assetId, err := rpc.Mint(ctx.Context, owner, ctx.String(uriFlag.Name), client.Royalty{
		Recipient:      recipient,
		FeeBasisPoints: uint32(ctx.Uint(feeFlag.Name)),
	})
	if err != nil {
		return err
	}
	return printJSON(map[string]uint64{"assetId": assetId})
}

func nftTransfer(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	from, to := ctx.String(fromFlag.Name), ctx.String(toFlag.Name)
	assetId := ctx.Uint64(assetIdFlag.Name)
	if ctx.IsSet(saleAmountFlag.Name) {
		return rpc.TransferWithRoyaltyPayout(
			ctx.Context, from, to, assetId, ctx.Uint64(saleAmountFlag.Name),
		)
	}
	return rpc.TransferAsset(ctx.Context, from, to, assetId)
}

func nftApprove(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	if operator := ctx.String(operatorFlag.Name); operator != "" {
		return rpc.SetApprovalForAll(ctx.Context, operator, !ctx.Bool(revokeFlag.Name))
	}
	if !ctx.IsSet(optionalAssetIdFlag.Name) {
		return fmt.Errorf("missing --%s", optionalAssetIdFlag.Name)
	}
	return rpc.ApproveAsset(
		ctx.Context, ctx.String(approvedFlag.Name), ctx.Uint64(optionalAssetIdFlag.Name),
	)
}

func nftOwner(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	assetId := ctx.Uint64(assetIdFlag.Name)
	owner, err := rpc.OwnerOf(ctx.Context, assetId)
	if err != nil {
		return err
	}
	approved, err := rpc.GetApproved(ctx.Context, assetId)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"owner": owner, "approved": approved})
}

func nftBalance(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	owner := ctx.String(ownerFlag.Name)
	balance, err := rpc.AssetBalanceOf(ctx.Context, owner)
	if err != nil {
		return err
	}
	assetIds := make([]uint64, 0, balance)
	for i := uint64(0); i < balance; i++ {
		assetId, err := rpc.TokenOfOwnerByIndex(ctx.Context, owner, i)
		if err != nil {
			return err
		}
		assetIds = append(assetIds, assetId)
	}
	return printJSON(map[string]interface{}{"balance": balance, "assetIds": assetIds})
}

func nftURI(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	uri, err := rpc.TokenURI(ctx.Context, ctx.Uint64(assetIdFlag.Name))
	if err != nil {
		return err
	}
	fmt.Println(uri)
	return nil
}

func nftRoyalty(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	royalty, err := rpc.RoyaltyOf(ctx.Context, ctx.Uint64(assetIdFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(royalty)
}

func marketInfo(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	info, err := rpc.GetInfo(ctx.Context)
	if err != nil {
		return err
	}
	return printJSON(info)
}

func marketCreate(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	itemId, err := rpc.CreateNFT(ctx.Context, ctx.String(uriFlag.Name), uint32(ctx.Uint(feeFlag.Name)))
	if err != nil {
		return err
	}
	return printJSON(map[string]uint64{"itemId": itemId})
}

func marketStartSale(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	return rpc.StartSale(ctx.Context, ctx.Uint64(itemIdFlag.Name), ctx.Uint64(priceFlag.Name))
}

func marketStopSale(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	return rpc.StopSale(ctx.Context, ctx.Uint64(itemIdFlag.Name))
}

func marketBuy(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	return rpc.BuyNFT(ctx.Context, ctx.Uint64(itemIdFlag.Name))
}

func marketStartAuction(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	return rpc.StartAuction(
		ctx.Context, ctx.Uint64(itemIdFlag.Name),
		ctx.Uint64(minPriceFlag.Name), ctx.Int64(durationFlag.Name),
	)
}

func marketBid(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	return rpc.MakeBid(ctx.Context, ctx.Uint64(itemIdFlag.Name), ctx.Uint64(amountFlag.Name))
}

func marketSettle(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	return rpc.SettleNFT(ctx.Context, ctx.Uint64(itemIdFlag.Name))
}

func marketItem(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	item, err := rpc.GetItem(ctx.Context, ctx.Uint64(itemIdFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"id":             item.Id,
		"owner":          item.Owner,
		"creator":        item.Creator,
		"price":          item.Price,
		"feeBasisPoints": item.FeeBasisPoints,
		"state":          item.State.String(),
		"originChain":    chainLabel(item.OriginChainId),
		"originAssetId":  item.OriginAssetId,
	})
}

func marketAuction(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	auction, err := rpc.GetAuction(ctx.Context, ctx.Uint64(itemIdFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(auction)
}

func marketItems(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	filter, err := getItemFilter(ctx)
	if err != nil {
		return err
	}
	items, err := rpc.ListItems(ctx.Context, filter)
	if err != nil {
		return err
	}
	return printJSON(items)
}

func bridgeAllow(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	chainId, err := getChain(ctx, chainFlag.Name)
	if err != nil {
		return err
	}
	return rpc.SetAllowedChain(ctx.Context, chainId, !ctx.Bool(disallowFlag.Name))
}

// bridgeSwap fetches the lineage of the item to build the digest the
// validator signs, unless a signature is given.
func bridgeSwap(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	if rpc.Sender() == "" {
		return fmt.Errorf("missing --%s", privateKeyFlagName)
	}
	chainTo, err := getChain(ctx, chainToFlag.Name)
	if err != nil {
		return err
	}
	info, err := rpc.GetInfo(ctx.Context)
	if err != nil {
		return err
	}

	req := client.InitSwapRequest{
		ChainFrom: info.ChainId,
		ChainTo:   chainTo,
		Recipient: ctx.String(recipientFlag.Name),
		ItemId:    ctx.Uint64(itemIdFlag.Name),
		Nonce:     ctx.Uint64(nonceFlag.Name),
		Signature: ctx.String(signatureFlag.Name),
	}
	if req.Signature == "" {
		validator, err := getValidator(ctx)
		if err != nil {
			return err
		}
		item, err := rpc.GetItem(ctx.Context, req.ItemId)
		if err != nil {
			return err
		}
		digest, err := rpc.SwapDigest(ctx.Context, client.SwapParams{
			ChainFrom:     req.ChainFrom,
			ChainTo:       req.ChainTo,
			Sender:        rpc.Sender(),
			Recipient:     req.Recipient,
			AssetId:       item.OriginAssetId,
			OriginChainId: item.OriginChainId,
			Nonce:         req.Nonce,
		})
		if err != nil {
			return err
		}
		if req.Signature, err = signDigest(validator, digest); err != nil {
			return err
		}
	}

	receipt, err := rpc.InitSwap(ctx.Context, req)
	if err != nil {
		return err
	}
	return printJSON(receipt)
}

func bridgeRedeem(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	var payload client.SwapPayload
	if err := json.Unmarshal([]byte(ctx.String(payloadFlag.Name)), &payload); err != nil {
		return fmt.Errorf("invalid --%s: %s", payloadFlag.Name, err)
	}
	receipt, err := rpc.Redeem(ctx.Context, payload)
	if err != nil {
		return err
	}
	return printJSON(receipt)
}

func getSwapParams(ctx *cli.Context) (client.SwapParams, error) {
	var params client.SwapParams
	var err error
	if params.ChainFrom, err = getChain(ctx, chainFromFlag.Name); err != nil {
		return params, err
	}
	if params.ChainTo, err = getChain(ctx, chainToFlag.Name); err != nil {
		return params, err
	}
	if params.OriginChainId, err = getChain(ctx, originChainFlag.Name); err != nil {
		return params, err
	}
	params.Sender = ctx.String(senderFlag.Name)
	params.Recipient = ctx.String(recipientFlag.Name)
	params.AssetId = ctx.Uint64(assetIdFlag.Name)
	params.Nonce = ctx.Uint64(nonceFlag.Name)
	return params, nil
}

func bridgeSign(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	validator, err := getValidator(ctx)
	if err != nil {
		return err
	}
	params, err := getSwapParams(ctx)
	if err != nil {
		return err
	}
	digest, err := rpc.SwapDigest(ctx.Context, params)
	if err != nil {
		return err
	}
	signature, err := signDigest(validator, digest)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"digest": digest, "validator": validator.Address(), "signature": signature,
	})
}

func bridgeDigest(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	params, err := getSwapParams(ctx)
	if err != nil {
		return err
	}
	digest, err := rpc.SwapDigest(ctx.Context, params)
	if err != nil {
		return err
	}
	fmt.Println(digest)
	return nil
}

func bridgeStatus(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	swap, err := rpc.GetSwap(ctx.Context, ctx.String(digestFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"digest":  swap.Digest,
		"status":  swap.Status.String(),
		"payload": swap.Payload,
	})
}

func tokenBalance(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	balance, err := rpc.BalanceOf(ctx.Context, ctx.String(accountFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(map[string]uint64{"balance": balance})
}

func tokenTransfer(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	return rpc.Transfer(ctx.Context, ctx.String(toFlag.Name), ctx.Uint64(amountFlag.Name))
}

func tokenApprove(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	return rpc.Approve(ctx.Context, ctx.String(spenderFlag.Name), ctx.Uint64(amountFlag.Name))
}

func tokenAllowance(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	allowance, err := rpc.Allowance(
		ctx.Context, ctx.String(ownerFlag.Name), ctx.String(spenderFlag.Name),
	)
	if err != nil {
		return err
	}
	return printJSON(map[string]uint64{"allowance": allowance})
}

func tokenMint(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	return rpc.MintCurrency(ctx.Context, ctx.String(toFlag.Name), ctx.Uint64(amountFlag.Name))
}

func adminGrant(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	role, err := getRole(ctx)
	if err != nil {
		return err
	}
	return rpc.GrantRole(ctx.Context, ctx.String(accountFlag.Name), role)
}

func adminRevoke(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	role, err := getRole(ctx)
	if err != nil {
		return err
	}
	return rpc.RevokeRole(ctx.Context, ctx.String(accountFlag.Name), role)
}

func adminRoles(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	roles, err := rpc.Roles(ctx.Context, ctx.String(accountFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(roles)
}

func listEvents(ctx *cli.Context) error {
	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	events, err := rpc.GetEvents(ctx.Context, ctx.String(topicFlag.Name), ctx.String(aggregateIdFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(events)
}

func listChains(ctx *cli.Context) error {
	result := make([]map[string]interface{}, 0)
	for _, name := range knownChains() {
		result = append(result, map[string]interface{}{
			"name": name, "chainId": domain.KnownChains[name],
		})
	}
	if !ctx.Bool(allowedFlag.Name) {
		return printJSON(result)
	}

	rpc, err := getClient(ctx)
	if err != nil {
		return err
	}
	allowed, err := rpc.AllowedChains(ctx.Context)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{"known": result, "allowed": allowed})
}
