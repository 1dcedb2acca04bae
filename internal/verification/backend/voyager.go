package backend

import (
	"context"

	"github.com/pendergraft/contraverify/internal/verification"
)

// VoyagerDefaultURL is the hosted Voyager API, overridden by VOYAGER_API_URL.
const VoyagerDefaultURL = "https://api.voyager.online/beta"

var voyagerPaths = map[verification.Network]string{
	verification.Mainnet: "/v1/sn_main/verify",
	verification.Sepolia: "/v1/sn_sepolia/verify",
}

type voyager struct {
	base
}

func (v *voyager) Verify(ctx context.Context, id verification.Identity, className string) (*verification.Result, error) {
	return v.verify(ctx, v.Endpoint, id, className)
}

func (v *voyager) Endpoint() (string, error) {
	return v.endpoint(VoyagerDefaultURL, voyagerPaths)
}
