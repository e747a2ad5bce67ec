package jsonrpcservice

import (
	"context"

	"github.com/arkade-os/nftd/internal/core/application"
	"github.com/arkade-os/nftd/internal/core/domain"
)

// EventView is the wire form of a stored event.
type EventView struct {
	Topic string       `json:"topic"`
	Type  string       `json:"type"`
	Event domain.Event `json:"event"`
}

func done(err error) (bool, error) {
	return err == nil, err
}

func nftModule(svc application.RegistryService) *RPCModule {
	return NewRPCModule("nft").
		Add("nft_mint", RPCMethod3(withSender3(func(
			ctx context.Context, sender, owner, uri string, royalty domain.Royalty,
		) (uint64, error) {
			return svc.Mint(ctx, sender, owner, uri, royalty)
		}))).
		Add("nft_transfer", RPCMethod3(withSender3(func(
			ctx context.Context, sender, from, to string, assetId uint64,
		) (bool, error) {
			return done(svc.Transfer(ctx, sender, from, to, assetId))
		}))).
		Add("nft_transferWithRoyaltyPayout", RPCMethod4(withSender4(func(
			ctx context.Context, sender, from, to string, assetId, saleAmount uint64,
		) (bool, error) {
			return done(svc.TransferWithRoyaltyPayout(ctx, sender, from, to, assetId, saleAmount))
		}))).
		Add("nft_approve", RPCMethod2(withSender2(func(
			ctx context.Context, sender, approved string, assetId uint64,
		) (bool, error) {
			return done(svc.Approve(ctx, sender, approved, assetId))
		}))).
		Add("nft_setApprovalForAll", RPCMethod2(withSender2(func(
			ctx context.Context, sender, operator string, approved bool,
		) (bool, error) {
			return done(svc.SetApprovalForAll(ctx, sender, operator, approved))
		}))).
		Add("nft_royaltyOf", RPCMethod1(svc.RoyaltyOf)).
		Add("nft_ownerOf", RPCMethod1(svc.OwnerOf)).
		Add("nft_tokenURI", RPCMethod1(svc.TokenURI)).
		Add("nft_getApproved", RPCMethod1(svc.GetApproved)).
		Add("nft_isApprovedForAll", RPCMethod2(svc.IsApprovedForAll)).
		Add("nft_balanceOf", RPCMethod1(svc.BalanceOf)).
		Add("nft_tokenOfOwnerByIndex", RPCMethod2(svc.TokenOfOwnerByIndex)).
		Add("nft_totalSupply", RPCMethod0(svc.TotalSupply))
}

func marketModule(app application.Service) *RPCModule {
	svc := app.Market()
	return NewRPCModule("market").
		Add("market_info", RPCMethod0(func(ctx context.Context) (application.Info, error) {
			return app.GetInfo(ctx), nil
		})).
		Add("market_createNFT", RPCMethod2(withSender2(func(
			ctx context.Context, sender, uri string, feeBasisPoints uint32,
		) (uint64, error) {
			return svc.CreateNFT(ctx, sender, uri, feeBasisPoints)
		}))).
		Add("market_startSale", RPCMethod2(withSender2(func(
			ctx context.Context, sender string, itemId, price uint64,
		) (bool, error) {
			return done(svc.StartSale(ctx, sender, itemId, price))
		}))).
		Add("market_stopSale", RPCMethod1(withSender1(func(
			ctx context.Context, sender string, itemId uint64,
		) (bool, error) {
			return done(svc.StopSale(ctx, sender, itemId))
		}))).
		Add("market_buyNFT", RPCMethod1(withSender1(func(
			ctx context.Context, sender string, itemId uint64,
		) (bool, error) {
			return done(svc.BuyNFT(ctx, sender, itemId))
		}))).
		Add("market_startAuction", RPCMethod3(withSender3(func(
			ctx context.Context, sender string, itemId, minPrice uint64, duration int64,
		) (bool, error) {
			return done(svc.StartAuction(ctx, sender, itemId, minPrice, duration))
		}))).
		Add("market_makeBid", RPCMethod2(withSender2(func(
			ctx context.Context, sender string, itemId, amount uint64,
		) (bool, error) {
			return done(svc.MakeBid(ctx, sender, itemId, amount))
		}))).
		Add("market_settleNFT", RPCMethod1(func(ctx context.Context, itemId uint64) (bool, error) {
			return done(svc.SettleNFT(ctx, itemId))
		})).
		Add("market_lockForBridge", RPCMethod2(withSender2(func(
			ctx context.Context, sender string, itemId uint64, owner string,
		) (*application.BridgeSnapshot, error) {
			return svc.LockForBridge(ctx, sender, itemId, owner)
		}))).
		Add("market_unlockFromBridge", RPCMethod2(withSender2(func(
			ctx context.Context, sender string, itemId uint64, recipient string,
		) (bool, error) {
			return done(svc.UnlockFromBridge(ctx, sender, itemId, recipient))
		}))).
		Add("market_getItem", RPCMethod1(svc.GetItem)).
		Add("market_getAuction", RPCMethod1(svc.GetAuction)).
		Add("market_correspondingId", RPCMethod2(svc.CorrespondingId))
}

func bridgeModule(svc application.BridgeService) *RPCModule {
	return NewRPCModule("bridge").
		Add("bridge_setAllowedChain", RPCMethod2(withSender2(func(
			ctx context.Context, sender string, chainId uint64, allowed bool,
		) (bool, error) {
			return done(svc.SetAllowedChain(ctx, sender, chainId, allowed))
		}))).
		Add("bridge_allowedChains", RPCMethod0(svc.GetAllowedChains)).
		Add("bridge_initSwap", RPCMethod1(withSender1(svc.InitSwap))).
		Add("bridge_redeem", RPCMethod1(svc.Redeem)).
		Add("bridge_getSwap", RPCMethod1(svc.GetSwap)).
		Add("bridge_swapDigest", RPCMethod1(func(
			_ context.Context, params domain.SwapParams,
		) (string, error) {
			return svc.SwapDigest(params)
		}))
}

func tokenModule(svc application.CurrencyService) *RPCModule {
	return NewRPCModule("token").
		Add("token_balanceOf", RPCMethod1(svc.BalanceOf)).
		Add("token_allowance", RPCMethod2(svc.Allowance)).
		Add("token_approve", RPCMethod2(withSender2(func(
			ctx context.Context, sender, spender string, amount uint64,
		) (bool, error) {
			return done(svc.Approve(ctx, sender, spender, amount))
		}))).
		Add("token_transfer", RPCMethod2(withSender2(func(
			ctx context.Context, sender, to string, amount uint64,
		) (bool, error) {
			return done(svc.Transfer(ctx, sender, to, amount))
		})))
}

func adminModule(svc application.AdminService) *RPCModule {
	return NewRPCModule("admin").
		Add("admin_grantRole", RPCMethod2(withSender2(func(
			ctx context.Context, sender, account string, role domain.Role,
		) (bool, error) {
			return done(svc.GrantRole(ctx, sender, account, role))
		}))).
		Add("admin_revokeRole", RPCMethod2(withSender2(func(
			ctx context.Context, sender, account string, role domain.Role,
		) (bool, error) {
			return done(svc.RevokeRole(ctx, sender, account, role))
		}))).
		Add("admin_hasRole", RPCMethod2(svc.HasRole)).
		Add("admin_roles", RPCMethod1(svc.GetRoles)).
		Add("admin_mintCurrency", RPCMethod2(withSender2(func(
			ctx context.Context, sender, to string, amount uint64,
		) (bool, error) {
			return done(svc.MintCurrency(ctx, sender, to, amount))
		})))
}

func eventsModule(svc application.IndexerService) *RPCModule {
	return NewRPCModule("events").
		Add("events_get", RPCMethod2(func(
			ctx context.Context, topic, id string,
		) ([]EventView, error) {
			events, err := svc.GetEvents(ctx, topic, id)
			if err != nil {
				return nil, err
			}
			views := make([]EventView, 0, len(events))
			for _, e := range events {
				views = append(views, EventView{
					Topic: e.GetTopic(), Type: e.GetType().String(), Event: e,
				})
			}
			return views, nil
		})).
		Add("events_items", RPCMethod1(svc.ListItems))
}

// newHandler wires every module of the application service.
func newHandler(app application.Service, auth *authenticator) *rpcServer {
	s := newRPCServer(auth)
	s.Register(nftModule(app.Registry()))
	s.Register(marketModule(app))
	s.Register(bridgeModule(app.Bridge()))
	s.Register(tokenModule(app.Currency()))
	s.Register(adminModule(app.Admin()))
	s.Register(eventsModule(app.Indexer()))
	return s
}
