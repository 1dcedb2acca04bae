//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/contraverify/internal/config"
	"github.com/pendergraft/contraverify/internal/server"
)

// TestContext holds shared test infrastructure
type TestContext struct {
	BinDir          string
	Binary          string
	Stub            *server.Server
	TestServer      *httptest.Server
	RejectingStub   *server.Server
	RejectingServer *httptest.Server
}

// buildCLIE compiles cmd/contraverify into a temp directory
func buildCLIE() (string, string, error) {
	binDir := filepath.Join(os.TempDir(), fmt.Sprintf("contraverify-e2e-%s", uuid.New().String()))
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create bin directory: %w", err)
	}

	binary := filepath.Join(binDir, "contraverify")
	// #nosec G204 -- controlled command
	cmd := exec.Command("go", "build", "-o", binary, "../../cmd/contraverify")
	output, err := cmd.CombinedOutput()
	if err != nil {
		os.RemoveAll(binDir)
		return "", "", fmt.Errorf("go build: %w\nOutput: %s", err, string(output))
	}

	return binDir, binary, nil
}

// startStubE starts the verifier stub in-process. A non-empty rejectMessage
// makes it answer every submission with 400.
func startStubE(rejectMessage string) (*server.Server, *httptest.Server) {
	cfg := &config.Config{
		Logging: config.LoggingConfig{Level: "debug", Format: "text"},
		Server: config.ServerConfig{
			MaxBodyMB:     20,
			RejectMessage: rejectMessage,
		},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	srv := server.New(cfg, logger)
	return srv, httptest.NewServer(srv.Handler())
}

// writeWorkspace lays out a built single-package Scarb project in a temp
// directory and returns the manifest path
func writeWorkspace(t *testing.T, pkg string, contracts ...string) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"Scarb.toml": fmt.Sprintf(`[package]
name = "%s"
version = "0.1.0"

[dependencies]
starknet = ">=2.6.3"

[[target.starknet-contract]]
`, pkg),
		"src/lib.cairo":       "mod token;\nmod utils;\n",
		"src/token.cairo":     "#[starknet::contract]\nmod MyToken {}\n",
		"src/utils/mod.cairo": "fn helper() {}\n",
		"README.md":           "not submitted\n",
	}
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}

	var entries []map[string]any
	for _, c := range contracts {
		entries = append(entries, map[string]any{
			"id":            pkg + "_" + c,
			"package_name":  pkg,
			"contract_name": c,
			"module_path":   pkg + "::" + c,
			"artifacts":     map[string]any{"sierra": pkg + "_" + c + ".contract_class.json", "casm": nil},
		})
	}
	data, err := json.Marshal(map[string]any{"version": 1, "contracts": entries})
	require.NoError(t, err)
	target := filepath.Join(root, "target", "dev")
	require.NoError(t, os.MkdirAll(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, pkg+".starknet_artifacts.json"), data, 0644))

	return filepath.Join(root, "Scarb.toml")
}

// cliResult is the outcome of one CLI invocation
type cliResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// runCLI runs the built binary with the given stdin and extra environment
func runCLI(t *testing.T, stdin string, env []string, args ...string) cliResult {
	t.Helper()

	// #nosec G204 -- controlled command
	cmd := exec.Command(testCtx.Binary, args...)
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir(), "CONTRAVERIFY_RETRY_ATTEMPTS=1")
	cmd.Env = append(cmd.Env, env...)
	cmd.Dir = t.TempDir()
	cmd.Stdin = bytes.NewBufferString(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := cliResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if exitErr, ok := err.(*exec.ExitError); ok {
		result.ExitCode = exitErr.ExitCode()
	} else {
		require.NoError(t, err)
	}
	return result
}
