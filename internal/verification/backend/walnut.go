package backend

import (
	"context"

	"github.com/pendergraft/contraverify/internal/verification"
)

// WalnutDefaultURL is the hosted Walnut API, overridden by WALNUT_API_URL.
const WalnutDefaultURL = "https://api.walnut.dev"

var walnutPaths = map[verification.Network]string{
	verification.Mainnet: "/v1/sn_main/verify",
	verification.Sepolia: "/v1/sn_sepolia/verify",
}

type walnut struct {
	base
}

func (w *walnut) Verify(ctx context.Context, id verification.Identity, className string) (*verification.Result, error) {
	return w.verify(ctx, w.Endpoint, id, className)
}

func (w *walnut) Endpoint() (string, error) {
	return w.endpoint(WalnutDefaultURL, walnutPaths)
}
