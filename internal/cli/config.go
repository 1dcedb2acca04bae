package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pendergraft/contraverify/internal/config"
	"github.com/pendergraft/contraverify/internal/verification"
	"github.com/pendergraft/contraverify/internal/verification/backend"
)

// projectConfigFile is the project config file name
const projectConfigFile = "contraverify.toml"

// ProjectConfig is the project-level TOML configuration
type ProjectConfig struct {
	Verifier  string                      `toml:"verifier,omitempty"`
	Network   string                      `toml:"network,omitempty"`
	Profile   string                      `toml:"profile,omitempty"`
	Package   string                      `toml:"package,omitempty"`
	Verifiers map[string]VerifierEndpoint `toml:"verifiers,omitempty"`
}

// VerifierEndpoint overrides a verification service's base URL
type VerifierEndpoint struct {
	URL string `toml:"url" yaml:"url"`
}

// GlobalConfig is the user-level configuration (stored in ~/.contraverify/config.yaml)
type GlobalConfig struct {
	Verifiers map[string]VerifierEndpoint `yaml:"verifiers"`
}

func createConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	cmd.AddCommand(createConfigInitCmd())
	cmd.AddCommand(createConfigShowCmd())

	return cmd
}

func createConfigInitCmd() *cobra.Command {
	var verifier string
	var network string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create config file",
		Long: `Create a contraverify.toml configuration file in the current directory.

This file stores project defaults for the verify command: the verification
service, the network, the build profile and base URL overrides.

EXAMPLES:
  # Create config with defaults
  contraverify config init

  # Default to Voyager on mainnet
  contraverify config init --verifier voyager --network mainnet

  # Overwrite existing config
  contraverify config init --force
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd.OutOrStdout(), projectConfigFile, verifier, network, force)
		},
	}

	cmd.Flags().StringVar(&verifier, "verifier", verification.DefaultVerifier.String(), "default verifier (walnut or voyager)")
	cmd.Flags().StringVar(&network, "network", verification.Sepolia.String(), "default network (mainnet or sepolia)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config")

	return cmd
}

func createConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current config",
		Long: `Display the current configuration.

Shows the environment, the local project config (contraverify.toml) and the
global config from ~/.contraverify/config.yaml, then the effective endpoints.

EXAMPLES:
  contraverify config show
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}

	return cmd
}

func runConfigInit(w io.Writer, configPath, verifier, network string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	v, err := verification.ParseVerifier(verifier)
	if err != nil {
		return err
	}
	n, err := verification.ParseNetwork(network)
	if err != nil {
		return err
	}

	// Generate TOML config
	content := fmt.Sprintf(`# Contraverify project configuration

verifier = "%s"
network = "%s"
profile = "dev"

# Workspace member to verify (empty = root package)
# package = "token"

# Base URL overrides (WALNUT_API_URL / VOYAGER_API_URL take precedence)
# [verifiers.walnut]
# url = "%s"
#
# [verifiers.voyager]
# url = "%s"
`, v, n, backend.WalnutDefaultURL, backend.VoyagerDefaultURL)

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(w, "Created %s\n", configPath)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintf(w, "  Verifier: %s\n", v)
	fmt.Fprintf(w, "  Network:  %s\n", n)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  1. Run 'scarb build' to produce contract artifacts")
	fmt.Fprintln(w, "  2. Run 'contraverify verify --contract-address 0x... --contract-name MyContract'")

	return nil
}

func runConfigShow(w io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Fprintln(w, "Configuration sources (in order of precedence):")
	fmt.Fprintln(w)

	// 1. Command line flags
	fmt.Fprintln(w, "1. Command line flags")
	fmt.Fprintln(w, "   --verifier, --network, --profile, --package, --config")
	fmt.Fprintln(w)

	// 2. Environment variables
	fmt.Fprintln(w, "2. Environment variables")
	for _, key := range []string{config.EnvWalnutURL, config.EnvVoyagerURL} {
		if value := os.Getenv(key); value != "" {
			fmt.Fprintf(w, "   %s=%s\n", key, value)
		} else {
			fmt.Fprintf(w, "   %s=(not set)\n", key)
		}
	}
	fmt.Fprintln(w)

	// 3. Local project config
	fmt.Fprintf(w, "3. Local project config (%s)\n", projectConfigFile)
	project, configPath, err := loadProjectConfig()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(w, "   (not found)")
		} else {
			fmt.Fprintf(w, "   Error: %v\n", err)
		}
	} else {
		fmt.Fprintf(w, "   Loaded from: %s\n", configPath)
		if project.Verifier != "" {
			fmt.Fprintf(w, "   verifier: %s\n", project.Verifier)
		}
		if project.Network != "" {
			fmt.Fprintf(w, "   network: %s\n", project.Network)
		}
		if project.Profile != "" {
			fmt.Fprintf(w, "   profile: %s\n", project.Profile)
		}
		if project.Package != "" {
			fmt.Fprintf(w, "   package: %s\n", project.Package)
		}
		printEndpointOverrides(w, project.Verifiers)
	}
	fmt.Fprintln(w)

	// 4. Global config
	fmt.Fprintln(w, "4. Global config (~/.contraverify/config.yaml)")
	global, err := loadGlobalConfig()
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(w, "   (not found)")
		} else {
			fmt.Fprintf(w, "   Error: %v\n", err)
		}
	} else {
		printEndpointOverrides(w, global.Verifiers)
	}
	fmt.Fprintln(w)

	// Effective config
	fmt.Fprintln(w, "Effective configuration:")
	overrides := resolveBaseURLs(cfg, project, global)
	for _, v := range verification.Verifiers() {
		base := overrides[v]
		if base == "" {
			base = backend.DefaultBaseURL(v) + " (default)"
		}
		fmt.Fprintf(w, "   %-8s %s\n", v.String()+":", base)
	}

	return nil
}

func printEndpointOverrides(w io.Writer, endpoints map[string]VerifierEndpoint) {
	for _, v := range verification.Verifiers() {
		if e, ok := endpoints[v.String()]; ok && e.URL != "" {
			fmt.Fprintf(w, "   verifiers.%s.url: %s\n", v, e.URL)
		}
	}
}

// loadProjectConfig loads the project config from --config or the current
// directory. Returns the config, the path it was loaded from, and an error.
func loadProjectConfig() (*ProjectConfig, string, error) {
	path := projectConfigFile
	if cfgFile != "" {
		path = cfgFile
	}

	if _, err := os.Stat(path); err != nil {
		return nil, path, err
	}

	config, err := loadProjectConfigFromPath(path)
	if err != nil {
		return nil, path, err
	}
	return config, path, nil
}

// loadProjectConfigFromPath loads a project config from a specific path
func loadProjectConfigFromPath(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config ProjectConfig
	if _, err := toml.Decode(string(data), &config); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	return &config, nil
}

// loadProjectConfigSilent loads the project config without returning errors for missing files.
// Returns nil if the file doesn't exist, but warns about parse failures.
func loadProjectConfigSilent(stderr io.Writer) *ProjectConfig {
	config, _, err := loadProjectConfig()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		fmt.Fprintf(stderr, "Warning: failed to load project config: %v\n", err)
		return nil
	}
	return config
}

func globalConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".contraverify"
	}
	return filepath.Join(home, ".contraverify")
}

func loadGlobalConfig() (*GlobalConfig, error) {
	data, err := os.ReadFile(filepath.Join(globalConfigDir(), "config.yaml"))
	if err != nil {
		return nil, err
	}

	var config GlobalConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return &config, nil
}

func loadGlobalConfigSilent(stderr io.Writer) *GlobalConfig {
	config, err := loadGlobalConfig()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		fmt.Fprintf(stderr, "Warning: failed to load global config: %v\n", err)
		return nil
	}
	return config
}

// resolveBaseURLs returns the base URL override for each verifier:
// environment, then project config, then global config. Verifiers with no
// override are absent and use the hosted default.
func resolveBaseURLs(cfg *config.Config, project *ProjectConfig, global *GlobalConfig) map[verification.Verifier]string {
	env := map[verification.Verifier]string{
		verification.Walnut:  cfg.Verifiers.WalnutURL,
		verification.Voyager: cfg.Verifiers.VoyagerURL,
	}

	overrides := make(map[verification.Verifier]string)
	for _, v := range verification.Verifiers() {
		// 1. Environment variable
		if url := env[v]; url != "" {
			overrides[v] = url
			continue
		}

		// 2. Project config file
		if project != nil {
			if e, ok := project.Verifiers[v.String()]; ok && e.URL != "" {
				overrides[v] = e.URL
				continue
			}
		}

		// 3. Global config file
		if global != nil {
			if e, ok := global.Verifiers[v.String()]; ok && e.URL != "" {
				overrides[v] = e.URL
			}
		}
	}
	return overrides
}
