package scarb

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenManifest = `[package]
name = "token"
version = "0.1.0"
cairo-version = "2.6.3"

[dependencies]
starknet = ">=2.6.3"

[[target.starknet-contract]]
sierra = true
casm = true
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeArtifacts(t *testing.T, root, profile, pkg string, contracts ...string) {
	t.Helper()
	var entries []map[string]any
	for _, c := range contracts {
		entries = append(entries, map[string]any{
			"id":            pkg + "_" + c,
			"package_name":  pkg,
			"contract_name": c,
			"module_path":   pkg + "::" + c,
			"artifacts": map[string]any{
				"sierra": pkg + "_" + c + ".contract_class.json",
				"casm":   nil,
			},
		})
	}
	data, err := json.Marshal(map[string]any{"version": 1, "contracts": entries})
	require.NoError(t, err)
	writeFile(t, filepath.Join(root, "target", profile, pkg+artifactsSuffix), string(data))
}

func TestFindManifest(t *testing.T) {
	t.Run("in the directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, ManifestFile), tokenManifest)

		path, err := FindManifest(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, ManifestFile), path)
	})

	t.Run("in a parent directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, ManifestFile), tokenManifest)
		nested := filepath.Join(dir, "src", "contracts")
		require.NoError(t, os.MkdirAll(nested, 0755))

		path, err := FindManifest(nested)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, ManifestFile), path)
	})

	t.Run("not found", func(t *testing.T) {
		dir := t.TempDir()
		_, err := FindManifest(dir)
		if err == nil {
			t.Skip("a Scarb.toml exists above the temp directory")
		}
		assert.True(t, errors.Is(err, ErrManifestNotFound))
	})
}

func TestLoadManifest(t *testing.T) {
	t.Run("package", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ManifestFile)
		writeFile(t, path, tokenManifest)

		m, err := LoadManifest(path)
		require.NoError(t, err)
		assert.Equal(t, "token", m.Package.Name)
		assert.Equal(t, "0.1.0", m.Package.Version)
		assert.Equal(t, "2.6.3", m.Package.CairoVersion)
		assert.False(t, m.IsWorkspace())
		require.Len(t, m.Target.StarknetContract, 1)
		require.NotNil(t, m.Target.StarknetContract[0].Sierra)
		assert.True(t, *m.Target.StarknetContract[0].Sierra)
	})

	t.Run("workspace", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ManifestFile)
		writeFile(t, path, "[workspace]\nmembers = [\"token\", \"vault\"]\n")

		m, err := LoadManifest(path)
		require.NoError(t, err)
		assert.True(t, m.IsWorkspace())
		assert.Equal(t, []string{"token", "vault"}, m.Workspace.Members)
	})

	t.Run("invalid version", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ManifestFile)
		writeFile(t, path, "[package]\nname = \"token\"\nversion = \"1.0\"\n")

		_, err := LoadManifest(path)
		assert.ErrorContains(t, err, "package version")
	})

	t.Run("missing name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ManifestFile)
		writeFile(t, path, "[package]\nversion = \"1.0.0\"\n")

		_, err := LoadManifest(path)
		assert.ErrorContains(t, err, "missing [package] name")
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ManifestFile)
		writeFile(t, path, "[package\nname = ")

		_, err := LoadManifest(path)
		assert.ErrorContains(t, err, "parsing")
	})
}

func TestLoadArtifacts(t *testing.T) {
	t.Run("single package", func(t *testing.T) {
		root := t.TempDir()
		writeArtifacts(t, root, "dev", "token", "MyToken", "Ownable")

		artifacts, err := LoadArtifacts(root, "", "token")
		require.NoError(t, err)
		assert.True(t, artifacts.Has("MyToken"))
		assert.True(t, artifacts.Has("Ownable"))
		assert.False(t, artifacts.Has("Vault"))
		assert.Equal(t, []string{"MyToken", "Ownable"}, artifacts.Names())
		assert.Equal(t, "token::MyToken", artifacts["MyToken"].ModulePath)
		assert.Nil(t, artifacts["MyToken"].Artifacts.Casm)
	})

	t.Run("merges every package when none is given", func(t *testing.T) {
		root := t.TempDir()
		writeArtifacts(t, root, "release", "token", "MyToken")
		writeArtifacts(t, root, "release", "vault", "Vault")

		artifacts, err := LoadArtifacts(root, "release", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"MyToken", "Vault"}, artifacts.Names())
	})

	t.Run("missing target directory", func(t *testing.T) {
		_, err := LoadArtifacts(t.TempDir(), "dev", "token")
		assert.ErrorContains(t, err, "scarb build")
	})

	t.Run("missing package artifacts", func(t *testing.T) {
		root := t.TempDir()
		writeArtifacts(t, root, "dev", "token", "MyToken")

		_, err := LoadArtifacts(root, "dev", "vault")
		assert.ErrorContains(t, err, "vault.starknet_artifacts.json not found")
	})

	t.Run("empty profile directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "target", "dev"), 0755))

		_, err := LoadArtifacts(root, "dev", "")
		assert.ErrorContains(t, err, "no starknet artifacts")
	})

	t.Run("malformed json", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "target", "dev", "token"+artifactsSuffix), "{")

		_, err := LoadArtifacts(root, "dev", "token")
		assert.ErrorContains(t, err, "parsing")
	})
}
