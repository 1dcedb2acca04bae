// Package backend implements the verifier services a workspace can be
// submitted to. The set is closed: one type per verification.Verifier value.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pendergraft/contraverify/internal/verification"
	"github.com/pendergraft/contraverify/internal/verification/transport"
	"github.com/pendergraft/contraverify/internal/workspace"
)

// Backend submits a workspace to one verification service.
type Backend interface {
	// Verify collects the workspace, builds the payload and submits it.
	Verify(ctx context.Context, id verification.Identity, className string) (*verification.Result, error)
	// Endpoint returns the submission URL for the bound network.
	Endpoint() (string, error)
}

// Options carries the collaborators and overrides a backend is built with.
type Options struct {
	// BaseURL replaces the service's hosted base URL when non-empty.
	BaseURL   string
	Collector workspace.Collector
	Submitter transport.Submitter
	Logger    *slog.Logger
}

// New returns the backend for verifier bound to network and workspace root.
// It performs no I/O.
func New(verifier verification.Verifier, network verification.Network, root string, opts Options) (Backend, error) {
	if opts.Collector == nil {
		opts.Collector = workspace.FileCollector{}
	}
	if opts.Submitter == nil {
		opts.Submitter = transport.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	b := base{
		network: network,
		root:    root,
		opts:    opts,
		logger:  opts.Logger.With("verifier", verifier.String(), "network", network.String()),
	}

	switch verifier {
	case verification.Walnut:
		return &walnut{base: b}, nil
	case verification.Voyager:
		return &voyager{base: b}, nil
	default:
		return nil, fmt.Errorf("%w: %q", verification.ErrUnknownVerifier, string(verifier))
	}
}

// base holds what every backend shares: the bound parameters and the
// collect-build-submit sequence.
type base struct {
	network verification.Network
	root    string
	opts    Options
	logger  *slog.Logger
}

// endpoint joins a base URL with the network's path from table. Networks
// missing from the table are an error, never a fallback route.
func (b *base) endpoint(defaultBase string, table map[verification.Network]string) (string, error) {
	path, ok := table[b.network]
	if !ok {
		return "", fmt.Errorf("%w: no endpoint for %q", verification.ErrUnmappedNetwork, string(b.network))
	}

	baseURL := defaultBase
	if b.opts.BaseURL != "" {
		baseURL = b.opts.BaseURL
	}
	return strings.TrimRight(baseURL, "/") + path, nil
}

func (b *base) verify(ctx context.Context, endpoint func() (string, error), id verification.Identity, className string) (*verification.Result, error) {
	bundle, err := b.opts.Collector.Collect(b.root)
	if err != nil {
		return nil, fmt.Errorf("reading workspace files: %w", err)
	}
	b.logger.Debug("workspace collected", "root", b.root, "files", len(bundle))

	payload, err := verification.NewPayload(className, id, bundle)
	if err != nil {
		return nil, err
	}

	url, err := endpoint()
	if err != nil {
		return nil, err
	}

	b.logger.Info("submitting verification", "url", url, "class_name", className, "identity", id.String())
	return b.opts.Submitter.Submit(ctx, url, payload)
}

// DefaultBaseURL returns the hosted base URL of verifier, or "" when the
// verifier is unknown.
func DefaultBaseURL(verifier verification.Verifier) string {
	switch verifier {
	case verification.Walnut:
		return WalnutDefaultURL
	case verification.Voyager:
		return VoyagerDefaultURL
	default:
		return ""
	}
}
