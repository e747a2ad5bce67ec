package jsonrpcservice

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/core/ports"
	"github.com/arkade-os/nftd/pkg/client"
	nfterrors "github.com/arkade-os/nftd/pkg/errors"
)

type senderKey struct{}

// authenticator checks the signature headers of a request. A request
// without a sender header is anonymous and can only call read methods.
type authenticator struct {
	verifier  ports.AttestationVerifier
	maxExpiry time.Duration
	now       func() time.Time
}

func (a *authenticator) authenticate(
	ctx context.Context, header http.Header, body []byte,
) (context.Context, error) {
	sender := header.Get(client.SenderHeader)
	if sender == "" {
		return ctx, nil
	}
	sender, err := domain.ParseAddress(sender)
	if err != nil {
		return nil, fmt.Errorf("invalid %s header: %s", client.SenderHeader, err)
	}

	expiry, err := strconv.ParseInt(header.Get(client.ExpiryHeader), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s header: %s", client.ExpiryHeader, err)
	}
	now := a.now().Unix()
	if expiry <= now {
		return nil, fmt.Errorf("request expired at %d", expiry)
	}
	if expiry > now+int64(a.maxExpiry.Seconds()) {
		return nil, fmt.Errorf("request expiry must be at most %s ahead", a.maxExpiry)
	}

	signer, err := a.verifier.RecoverSigner(
		client.RequestDigest(body, expiry), header.Get(client.SignatureHeader),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid %s header: %s", client.SignatureHeader, err)
	}
	if signer != sender {
		return nil, fmt.Errorf("request signed by %s, not by sender %s", signer, sender)
	}
	return context.WithValue(ctx, senderKey{}, sender), nil
}

func senderFromContext(ctx context.Context) (string, error) {
	sender, ok := ctx.Value(senderKey{}).(string)
	if !ok || sender == "" {
		return "", nfterrors.FORBIDDEN.New("this method requires a signed request").
			WithMetadata(nfterrors.PermissionMetadata{})
	}
	return sender, nil
}

// withSenderN hands the authenticated sender to impl as its first param.
func withSender1[R any, P0 any](
	impl func(ctx context.Context, sender string, p0 P0) (R, error),
) func(ctx context.Context, p0 P0) (R, error) {
	return func(ctx context.Context, p0 P0) (R, error) {
		sender, err := senderFromContext(ctx)
		if err != nil {
			var zero R
			return zero, err
		}
		return impl(ctx, sender, p0)
	}
}

func withSender2[R any, P0 any, P1 any](
	impl func(ctx context.Context, sender string, p0 P0, p1 P1) (R, error),
) func(ctx context.Context, p0 P0, p1 P1) (R, error) {
	return func(ctx context.Context, p0 P0, p1 P1) (R, error) {
		sender, err := senderFromContext(ctx)
		if err != nil {
			var zero R
			return zero, err
		}
		return impl(ctx, sender, p0, p1)
	}
}

func withSender3[R any, P0 any, P1 any, P2 any](
	impl func(ctx context.Context, sender string, p0 P0, p1 P1, p2 P2) (R, error),
) func(ctx context.Context, p0 P0, p1 P1, p2 P2) (R, error) {
	return func(ctx context.Context, p0 P0, p1 P1, p2 P2) (R, error) {
		sender, err := senderFromContext(ctx)
		if err != nil {
			var zero R
			return zero, err
		}
		return impl(ctx, sender, p0, p1, p2)
	}
}

func withSender4[R any, P0 any, P1 any, P2 any, P3 any](
	impl func(ctx context.Context, sender string, p0 P0, p1 P1, p2 P2, p3 P3) (R, error),
) func(ctx context.Context, p0 P0, p1 P1, p2 P2, p3 P3) (R, error) {
	return func(ctx context.Context, p0 P0, p1 P1, p2 P2, p3 P3) (R, error) {
		sender, err := senderFromContext(ctx)
		if err != nil {
			var zero R
			return zero, err
		}
		return impl(ctx, sender, p0, p1, p2, p3)
	}
}
