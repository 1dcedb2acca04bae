package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pendergraft/contraverify/internal/observability/metrics"
	"github.com/pendergraft/contraverify/internal/verification"
	"github.com/pendergraft/contraverify/internal/verification/backend"
	"github.com/pendergraft/contraverify/internal/verification/transport"
)

type service struct {
	confirmer  Confirmer
	newBackend BackendFactory
}

// NewService creates a new verification service.
func NewService(confirmer Confirmer, newBackend BackendFactory) *service {
	return &service{
		confirmer:  confirmer,
		newBackend: newBackend,
	}
}

// Backends returns a BackendFactory that builds real backends. overrides maps
// a verifier to its base URL; missing entries use the hosted default.
func Backends(overrides map[verification.Verifier]string, submitter transport.Submitter, logger *slog.Logger) BackendFactory {
	return func(verifier verification.Verifier, network verification.Network, root string) (backend.Backend, error) {
		return backend.New(verifier, network, root, backend.Options{
			BaseURL:   overrides[verifier],
			Submitter: submitter,
			Logger:    logger,
		})
	}
}

// Verify runs a verification request: confirmation, artifact check, workspace
// resolution, then submission through the selected backend. Nothing is read
// from disk or sent over the network until confirmation is given.
func (s *service) Verify(ctx context.Context, req VerifyRequest) (*verification.Result, error) {
	start := time.Now()
	result, err := s.verify(ctx, req)
	metrics.VerificationSubmit(req.Verifier.String(), req.Network.String(), outcome(err), time.Since(start))
	return result, err
}

func (s *service) verify(ctx context.Context, req VerifyRequest) (*verification.Result, error) {
	// Confirmation gate
	if !req.SkipConfirmation {
		ok, err := s.confirmer.Confirm(ConfirmationPrompt(req.Verifier))
		if err != nil {
			return nil, fmt.Errorf("reading confirmation: %w", err)
		}
		if !ok {
			return nil, verification.ErrUserAborted
		}
	}

	// Preconditions
	if req.Artifacts == nil || !req.Artifacts.Has(req.ContractName) {
		return nil, fmt.Errorf("%w: contract named '%s' was not found", verification.ErrContractNotFound, req.ContractName)
	}
	if req.Identity == nil {
		return nil, fmt.Errorf("%w: missing contract address or class hash", verification.ErrRequestSerialization)
	}

	root, err := workspaceRoot(req.ManifestPath)
	if err != nil {
		return nil, err
	}

	b, err := s.newBackend(req.Verifier, req.Network, root)
	if err != nil {
		return nil, err
	}

	return b.Verify(ctx, req.Identity, req.ContractName)
}

// workspaceRoot returns the directory holding the manifest.
func workspaceRoot(manifestPath string) (string, error) {
	if manifestPath == "" {
		return "", fmt.Errorf("%w: failed to obtain workspace dir: empty manifest path", verification.ErrWorkspacePath)
	}
	cleaned := filepath.Clean(manifestPath)
	dir := filepath.Dir(cleaned)
	if dir == cleaned {
		return "", fmt.Errorf("%w: failed to obtain workspace dir: %s has no parent", verification.ErrWorkspacePath, manifestPath)
	}
	return dir, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, verification.ErrUserAborted):
		return "aborted"
	case errors.Is(err, verification.ErrServiceRejected):
		return "rejected"
	case transport.IsTransportError(err), errors.Is(err, verification.ErrResponseRead):
		return "transport_error"
	default:
		return "error"
	}
}
