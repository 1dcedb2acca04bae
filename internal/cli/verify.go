package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pendergraft/contraverify/internal/observability/metrics"
	"github.com/pendergraft/contraverify/internal/prompt"
	"github.com/pendergraft/contraverify/internal/scarb"
	"github.com/pendergraft/contraverify/internal/validation"
	"github.com/pendergraft/contraverify/internal/verification"
	"github.com/pendergraft/contraverify/internal/verification/domain"
	"github.com/pendergraft/contraverify/internal/verification/transport"
)

type verifyOptions struct {
	contractAddress string
	classHash       string
	contractName    string
	verifier        string
	network         string
	confirm         bool
	pkg             string
	manifestPath    string
	profile         string
}

func createVerifyCmd() *cobra.Command {
	var opts verifyOptions

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Submit a contract's workspace for verification",
		Long: `Submit the whole Scarb workspace to a verification service so the
deployed contract (or declared class) can be matched against its sources.

Every .cairo and .toml file under the workspace root is sent and becomes
publicly available through the chosen service. You are asked to confirm
first unless --confirm-verification is given.

EXAMPLES:
  # Verify a deployed contract on Sepolia with Walnut
  contraverify verify \
    --contract-address 0x0123... \
    --contract-name MyToken \
    --network sepolia

  # Verify a declared class on mainnet with Voyager, without prompting
  contraverify verify \
    --class-hash 0x0456... \
    --contract-name MyToken \
    --verifier voyager \
    --network mainnet \
    --confirm-verification
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.contractAddress, "contract-address", "a", "", "address of the deployed contract")
	cmd.Flags().StringVar(&opts.classHash, "class-hash", "", "hash of the declared contract class")
	cmd.Flags().StringVarP(&opts.contractName, "contract-name", "c", "", "name of the contract in the build artifacts (required)")
	cmd.Flags().StringVarP(&opts.verifier, "verifier", "v", "", "verification service: walnut or voyager (default walnut)")
	cmd.Flags().StringVarP(&opts.network, "network", "n", "", "network: mainnet or sepolia")
	cmd.Flags().BoolVar(&opts.confirm, "confirm-verification", false, "skip the confirmation prompt")
	cmd.Flags().StringVar(&opts.pkg, "package", "", "workspace member the contract belongs to")
	cmd.Flags().StringVar(&opts.manifestPath, "manifest-path", "", "path to Scarb.toml (default: searched upwards from the current directory)")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "build profile whose artifacts are read (default dev)")
	cmd.MarkFlagsMutuallyExclusive("contract-address", "class-hash")
	cmd.MarkFlagsOneRequired("contract-address", "class-hash")
	_ = cmd.MarkFlagRequired("contract-name")

	return cmd
}

func runVerify(cmd *cobra.Command, opts verifyOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := setupLogger(cfg, cmd.ErrOrStderr())

	metrics.Init(cfg.Metrics.Enabled)
	if cfg.Metrics.Textfile != "" {
		defer func() {
			if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				logger.Warn("failed to write metrics", "path", cfg.Metrics.Textfile, "error", err)
			}
		}()
	}

	project := loadProjectConfigSilent(cmd.ErrOrStderr())
	global := loadGlobalConfigSilent(cmd.ErrOrStderr())
	if project == nil {
		project = &ProjectConfig{}
	}

	req, err := buildVerifyRequest(opts, project)
	if err != nil {
		return err
	}

	artifacts, err := loadArtifacts(req, opts.profile, project.Profile, logger)
	if err != nil {
		return err
	}
	req.Artifacts = artifacts

	client := transport.New(
		transport.WithTimeout(cfg.HTTP.Timeout),
		transport.WithRetry(cfg.HTTP.RetryAttempts, cfg.HTTP.RetryBackoff),
		transport.WithUserAgent(cfg.HTTP.UserAgent),
		transport.WithLogger(logger),
	)
	backends := domain.Backends(resolveBaseURLs(cfg, project, global), client, logger)
	confirmer := &prompt.Terminal{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
	svc := domain.LoggingMiddleware(logger)(domain.NewService(confirmer, backends))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := svc.Verify(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	return nil
}

// buildVerifyRequest validates the flags and fills in project defaults.
// Artifacts are left for loadArtifacts.
func buildVerifyRequest(opts verifyOptions, project *ProjectConfig) (domain.VerifyRequest, error) {
	var req domain.VerifyRequest

	switch {
	case opts.contractAddress != "" && opts.classHash != "":
		return req, errors.New("--contract-address and --class-hash are mutually exclusive")
	case opts.contractAddress != "":
		if err := validation.ValidateFelt(opts.contractAddress); err != nil {
			return req, fmt.Errorf("contract address: %w", err)
		}
		req.Identity = verification.ContractAddress(opts.contractAddress)
	case opts.classHash != "":
		if err := validation.ValidateFelt(opts.classHash); err != nil {
			return req, fmt.Errorf("class hash: %w", err)
		}
		req.Identity = verification.ClassHash(opts.classHash)
	default:
		return req, errors.New("one of --contract-address or --class-hash is required")
	}

	if err := validation.ValidateContractName(opts.contractName); err != nil {
		return req, err
	}
	req.ContractName = opts.contractName

	verifierName := firstNonEmpty(opts.verifier, project.Verifier, verification.DefaultVerifier.String())
	v, err := verification.ParseVerifier(verifierName)
	if err != nil {
		return req, err
	}
	req.Verifier = v

	networkName := firstNonEmpty(opts.network, project.Network)
	if networkName == "" {
		return req, errors.New("--network is required (mainnet or sepolia)")
	}
	n, err := verification.ParseNetwork(networkName)
	if err != nil {
		return req, err
	}
	req.Network = n

	req.SkipConfirmation = opts.confirm
	req.Package = firstNonEmpty(opts.pkg, project.Package)

	manifestPath := opts.manifestPath
	if manifestPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return req, fmt.Errorf("%w: %w", verification.ErrWorkspacePath, err)
		}
		manifestPath, err = scarb.FindManifest(cwd)
		if err != nil {
			return req, err
		}
	}
	req.ManifestPath = manifestPath

	return req, nil
}

// loadArtifacts reads the build artifacts of the request's package. Without
// an explicit package the manifest's own package is used; a virtual
// workspace merges every member.
func loadArtifacts(req domain.VerifyRequest, profileFlag, profileConfig string, logger *slog.Logger) (scarb.Artifacts, error) {
	manifest, err := scarb.LoadManifest(req.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	pkg := req.Package
	if pkg == "" && !manifest.IsWorkspace() {
		pkg = manifest.Package.Name
	}
	profile := firstNonEmpty(profileFlag, profileConfig, scarb.DefaultProfile)

	artifacts, err := scarb.LoadArtifacts(filepath.Dir(req.ManifestPath), profile, pkg)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded artifacts", "package", pkg, "profile", profile, "contracts", artifacts.Names())
	return artifacts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
