package jsonrpcservice

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/arkade-os/nftd/internal/core/application"
	"github.com/arkade-os/nftd/internal/core/ports"
	"github.com/arkade-os/nftd/internal/infrastructure/attestation"
	inmemoryledger "github.com/arkade-os/nftd/internal/infrastructure/currency/inmemory"
	"github.com/arkade-os/nftd/internal/infrastructure/db"
	timescheduler "github.com/arkade-os/nftd/internal/infrastructure/scheduler/gocron"
	"github.com/arkade-os/nftd/pkg/client"
	nfterrors "github.com/arkade-os/nftd/pkg/errors"
	"github.com/google/uuid"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

type fixture struct {
	url    string
	admin  ports.AttestationSigner
	artist ports.AttestationSigner
	buyer  ports.AttestationSigner
}

func newSigner(t *testing.T) ports.AttestationSigner {
	t.Helper()
	signer, _, err := attestation.GenerateSigner()
	require.NoError(t, err)
	return signer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{admin: newSigner(t), artist: newSigner(t), buyer: newSigner(t)}

	repo, err := db.NewService(db.ServiceConfig{
		EventStoreType:   "badger",
		DataStoreType:    "badger",
		EventStoreConfig: []interface{}{"", nil},
		DataStoreConfig:  []interface{}{"", nil},
	})
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	scheduler := timescheduler.NewScheduler()
	scheduler.Start()
	t.Cleanup(scheduler.Stop)

	verifier := attestation.NewVerifier()
	app, err := application.NewService(application.Config{
		ChainId:      4,
		AdminAddress: f.admin.Address(),
		BaseURI:      "ipfs://",
	}, repo, inmemoryledger.NewLedger(), scheduler, verifier)
	require.NoError(t, err)
	require.NoError(t, app.Start())
	t.Cleanup(app.Stop)

	auth := &authenticator{verifier: verifier, maxExpiry: defaultMaxRequestExpiry, now: time.Now}
	srv := httptest.NewServer(newHandler(app, auth))
	t.Cleanup(srv.Close)
	f.url = srv.URL
	return f
}

func (f *fixture) client(t *testing.T, signer client.Signer, opts ...client.Option) *client.Client {
	t.Helper()
	if signer != nil {
		opts = append(opts, client.WithSigner(signer))
	}
	cli, err := client.NewClient(f.url, opts...)
	require.NoError(t, err)
	return cli
}

func requireAppCode[MT any](t *testing.T, code nfterrors.Code[MT], err error) {
	t.Helper()
	require.Error(t, err)
	rpcErr, ok := err.(*client.Error)
	require.Truef(t, ok, "unexpected error type %T", err)
	appCode, ok := rpcErr.AppCode()
	require.True(t, ok)
	require.Equalf(t, code.Code, appCode, "expected %s, got %s", code, rpcErr.Message)
	require.Equal(t, int64(AppErrorCodeBase)-int64(code.Code), rpcErr.Code)
}

func TestMarketplaceOverRPC(t *testing.T) {
	f := newFixture(t)
	admin := f.client(t, f.admin)
	artist := f.client(t, f.artist)
	buyer := f.client(t, f.buyer)
	anonymous := f.client(t, nil)

	_, err := artist.CreateNFT(ctx, "a.json", 500)
	requireAppCode(t, nfterrors.FORBIDDEN, err)

	require.NoError(t, admin.GrantRole(ctx, f.artist.Address(), "ARTIST"))
	roles, err := anonymous.Roles(ctx, f.artist.Address())
	require.NoError(t, err)
	require.Equal(t, []string{"ARTIST"}, roles)

	itemId, err := artist.CreateNFT(ctx, "a.json", 500)
	require.NoError(t, err)
	require.Zero(t, itemId)
	require.NoError(t, artist.StartSale(ctx, itemId, 100))

	// mutating methods need a signed request
	err = anonymous.BuyNFT(ctx, itemId)
	requireAppCode(t, nfterrors.FORBIDDEN, err)
	err = buyer.BuyNFT(ctx, 42)
	requireAppCode(t, nfterrors.ITEM_NOT_FOUND, err)
	err = buyer.BuyNFT(ctx, itemId)
	requireAppCode(t, nfterrors.INSUFFICIENT_FUNDS, err)

	info, err := anonymous.GetInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(4), info.ChainId)

	require.NoError(t, admin.MintCurrency(ctx, f.buyer.Address(), 1000))
	require.NoError(t, buyer.Approve(ctx, info.MarketAccount, 100))
	require.NoError(t, buyer.BuyNFT(ctx, itemId))

	owner, err := anonymous.OwnerOf(ctx, itemId)
	require.NoError(t, err)
	require.Equal(t, f.buyer.Address(), owner)

	uri, err := anonymous.TokenURI(ctx, itemId)
	require.NoError(t, err)
	require.Equal(t, "ipfs://a.json", uri)

	balance, err := anonymous.BalanceOf(ctx, f.artist.Address())
	require.NoError(t, err)
	require.Equal(t, uint64(100), balance)
	balance, err = anonymous.BalanceOf(ctx, f.buyer.Address())
	require.NoError(t, err)
	require.Equal(t, uint64(900), balance)

	item, err := anonymous.GetItem(ctx, itemId)
	require.NoError(t, err)
	require.Equal(t, client.ItemStateIdle, item.State)
	require.Equal(t, f.artist.Address(), item.Creator)

	items, err := anonymous.ListItems(ctx, client.ItemFilter{Owner: f.buyer.Address()})
	require.NoError(t, err)
	require.Len(t, items, 1)

	events, err := anonymous.GetEvents(ctx, "item", "0")
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	require.Equal(t, []string{"ItemCreated", "SaleStarted", "Sale"}, types)

	digest, err := anonymous.SwapDigest(ctx, client.SwapParams{
		ChainFrom: 4, ChainTo: 97, Sender: f.buyer.Address(), Recipient: f.buyer.Address(),
		AssetId: itemId, OriginChainId: 4, Nonce: 1,
	})
	require.NoError(t, err)
	require.Len(t, digest, 66)
}

func signedRequest(
	t *testing.T, url string, signer ports.AttestationSigner, sender string, expiry int64, body []byte,
) *http.Request {
	t.Helper()
	signature, err := signer.Sign(client.RequestDigest(body, expiry))
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(client.SenderHeader, sender)
	req.Header.Set(client.ExpiryHeader, strconv.FormatInt(expiry, 10))
	req.Header.Set(client.SignatureHeader, signature)
	return req
}

func do(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, body
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t)
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"token_transfer","params":["` +
		f.buyer.Address() + `",1]}`)
	now := time.Now().Unix()

	fixtures := []struct {
		name   string
		signer ports.AttestationSigner
		sender string
		expiry int64
	}{
		{name: "expired", signer: f.admin, sender: f.admin.Address(), expiry: now - 1},
		{name: "expiry too far", signer: f.admin, sender: f.admin.Address(), expiry: now + 3600},
		{name: "wrong signer", signer: f.artist, sender: f.admin.Address(), expiry: now + 60},
		{name: "invalid sender", signer: f.admin, sender: "admin", expiry: now + 60},
	}
	for _, tc := range fixtures {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := do(t, signedRequest(t, f.url, tc.signer, tc.sender, tc.expiry, body))
			require.Equal(t, http.StatusUnauthorized, status)
		})
	}

	t.Run("tampered body", func(t *testing.T) {
		req := signedRequest(t, f.url, f.admin, f.admin.Address(), now+60, body)
		req.Body = io.NopCloser(bytes.NewReader(bytes.Replace(body, []byte(",1]"), []byte(",9]"), 1)))
		req.ContentLength = int64(len(body))
		status, _ := do(t, req)
		require.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("valid", func(t *testing.T) {
		// the admin holds no currency, the request reaches the application
		status, resBody := do(t, signedRequest(t, f.url, f.admin, f.admin.Address(), now+60, body))
		require.Equal(t, http.StatusInternalServerError, status)
		var res rpcbackend.RPCResponse
		require.NoError(t, json.Unmarshal(resBody, &res))
		require.NotNil(t, res.Error)
		require.Equal(t, int64(AppErrorCodeBase)-int64(nfterrors.INSUFFICIENT_FUNDS.Code), res.Error.Code)
	})

	t.Run("client ttl too long", func(t *testing.T) {
		cli := f.client(t, f.admin, client.WithRequestTTL(time.Hour))
		err := cli.Transfer(ctx, f.buyer.Address(), 1)
		require.Error(t, err)
		rpcErr, ok := err.(*client.Error)
		require.True(t, ok)
		require.Equal(t, int64(rpcbackend.RPCCodeInvalidRequest), rpcErr.Code)
		_, ok = rpcErr.AppCode()
		require.False(t, ok)
	})
}

func TestRPCEnvelope(t *testing.T) {
	f := newFixture(t)

	post := func(t *testing.T, body string) (int, []byte) {
		req, err := http.NewRequest(http.MethodPost, f.url, bytes.NewReader([]byte(body)))
		require.NoError(t, err)
		return do(t, req)
	}

	t.Run("method not allowed", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, f.url, nil)
		require.NoError(t, err)
		status, _ := do(t, req)
		require.Equal(t, http.StatusMethodNotAllowed, status)
	})

	t.Run("invalid requests", func(t *testing.T) {
		fixtures := []struct {
			name string
			body string
			code rpcbackend.RPCCode
		}{
			{name: "parse error", body: `{`, code: rpcbackend.RPCCodeParseError},
			{name: "empty batch", body: `[]`, code: rpcbackend.RPCCodeParseError},
			{
				name: "missing id",
				body: `{"jsonrpc":"2.0","method":"nft_totalSupply"}`,
				code: rpcbackend.RPCCodeInvalidRequest,
			},
			{
				name: "unknown method",
				body: `{"jsonrpc":"2.0","id":1,"method":"nft_burn","params":[0]}`,
				code: rpcbackend.RPCCodeInvalidRequest,
			},
			{
				name: "wrong number of params",
				body: `{"jsonrpc":"2.0","id":1,"method":"nft_ownerOf","params":[]}`,
				code: rpcbackend.RPCCodeInvalidRequest,
			},
			{
				name: "wrong param type",
				body: `{"jsonrpc":"2.0","id":1,"method":"nft_ownerOf","params":["zero"]}`,
				code: rpcbackend.RPCCodeInvalidRequest,
			},
		}
		for _, tc := range fixtures {
			t.Run(tc.name, func(t *testing.T) {
				status, body := post(t, tc.body)
				require.Equal(t, http.StatusInternalServerError, status)
				var res rpcbackend.RPCResponse
				require.NoError(t, json.Unmarshal(body, &res))
				require.NotNil(t, res.Error)
				require.Equal(t, int64(tc.code), res.Error.Code)
			})
		}
	})

	t.Run("request id", func(t *testing.T) {
		ids := make(map[string]struct{})
		for i := 0; i < 2; i++ {
			resp, err := http.Post(
				f.url, "application/json",
				bytes.NewReader([]byte(`{"jsonrpc":"2.0","id":1,"method":"nft_totalSupply","params":[]}`)),
			)
			require.NoError(t, err)
			resp.Body.Close()
			requestId := resp.Header.Get(requestIdHeader)
			_, err = uuid.Parse(requestId)
			require.NoError(t, err)
			ids[requestId] = struct{}{}
		}
		require.Len(t, ids, 2)
	})

	t.Run("batch", func(t *testing.T) {
		status, body := post(t, `[
			{"jsonrpc":"2.0","id":1,"method":"nft_totalSupply","params":[]},
			{"jsonrpc":"2.0","id":2,"method":"nft_burn","params":[0]},
			{"jsonrpc":"2.0","id":3,"method":"market_getItem","params":[7]}
		]`)
		require.Equal(t, http.StatusOK, status)

		var res []rpcbackend.RPCResponse
		require.NoError(t, json.Unmarshal(body, &res))
		require.Len(t, res, 3)

		require.Nil(t, res[0].Error)
		require.Equal(t, "0", res[0].Result.String())
		require.NotNil(t, res[1].Error)
		require.Equal(t, int64(rpcbackend.RPCCodeInvalidRequest), res[1].Error.Code)
		require.NotNil(t, res[2].Error)
		require.Equal(t, int64(AppErrorCodeBase)-int64(nfterrors.ITEM_NOT_FOUND.Code), res[2].Error.Code)
	})
}
