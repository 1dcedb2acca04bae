// Package scarb reads Scarb workspaces: the Scarb.toml manifest and the
// starknet artifacts produced by `scarb build`.
package scarb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pendergraft/contraverify/internal/validation"
)

// ManifestFile is the name of a Scarb manifest
const ManifestFile = "Scarb.toml"

// DefaultProfile is the build profile used when none is given
const DefaultProfile = "dev"

const artifactsSuffix = ".starknet_artifacts.json"

// ErrManifestNotFound is returned when no Scarb.toml exists above a directory
var ErrManifestNotFound = errors.New("Scarb.toml not found")

// Manifest is the subset of Scarb.toml this tool reads
type Manifest struct {
	Package   Package   `toml:"package"`
	Workspace Workspace `toml:"workspace"`
	Target    Target    `toml:"target"`
}

// Package is the [package] table
type Package struct {
	Name         string `toml:"name"`
	Version      string `toml:"version"`
	CairoVersion string `toml:"cairo-version"`
}

// Workspace is the [workspace] table
type Workspace struct {
	Members []string `toml:"members"`
}

// Target holds the build targets
type Target struct {
	StarknetContract []StarknetContractTarget `toml:"starknet-contract"`
}

// StarknetContractTarget is one [[target.starknet-contract]] entry
type StarknetContractTarget struct {
	Name   string `toml:"name"`
	Sierra *bool  `toml:"sierra"`
	Casm   *bool  `toml:"casm"`
}

// IsWorkspace reports whether the manifest declares workspace members
func (m *Manifest) IsWorkspace() bool {
	return len(m.Workspace.Members) > 0
}

// FindManifest walks up from dir to the first directory holding Scarb.toml
// and returns the manifest's path
func FindManifest(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}

	for {
		candidate := filepath.Join(abs, ManifestFile)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrManifestNotFound, dir)
		}
		abs = parent
	}
}

// LoadManifest parses the manifest at path
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if m.Package.Name == "" && !m.IsWorkspace() {
		return nil, fmt.Errorf("%s: missing [package] name", path)
	}
	if m.Package.Version != "" {
		if err := validation.ValidateVersion(m.Package.Version); err != nil {
			return nil, fmt.Errorf("%s: package version: %w", path, err)
		}
	}

	return &m, nil
}

// Contract describes one built contract
type Contract struct {
	ID           string            `json:"id"`
	PackageName  string            `json:"package_name"`
	ContractName string            `json:"contract_name"`
	ModulePath   string            `json:"module_path"`
	Artifacts    ContractArtifacts `json:"artifacts"`
}

// ContractArtifacts names the compiled class files of a contract
type ContractArtifacts struct {
	Sierra string  `json:"sierra"`
	Casm   *string `json:"casm"`
}

type artifactsFile struct {
	Version   int        `json:"version"`
	Contracts []Contract `json:"contracts"`
}

// Artifacts maps contract names to the contracts the last build produced
type Artifacts map[string]Contract

// Has reports whether a contract with the given name was built
func (a Artifacts) Has(contractName string) bool {
	_, ok := a[contractName]
	return ok
}

// Names returns the contract names in sorted order
func (a Artifacts) Names() []string {
	names := make([]string, 0, len(a))
	for name := range a {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadArtifacts reads target/<profile>/<package>.starknet_artifacts.json under
// workspaceRoot. With an empty packageName every artifacts file of the profile
// is merged.
func LoadArtifacts(workspaceRoot, profile, packageName string) (Artifacts, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	targetDir := filepath.Join(workspaceRoot, "target", profile)

	if _, err := os.Stat(targetDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("target/%s directory not found - run 'scarb build' first", profile)
	}

	var files []string
	if packageName != "" {
		files = []string{filepath.Join(targetDir, packageName+artifactsSuffix)}
	} else {
		entries, err := os.ReadDir(targetDir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), artifactsSuffix) {
				files = append(files, filepath.Join(targetDir, e.Name()))
			}
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no starknet artifacts in target/%s - run 'scarb build' first", profile)
		}
	}

	artifacts := make(Artifacts)
	for _, f := range files {
		if err := readArtifactsFile(f, artifacts); err != nil {
			return nil, err
		}
	}
	return artifacts, nil
}

func readArtifactsFile(path string, into Artifacts) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s not found - run 'scarb build' first", filepath.Base(path))
		}
		return err
	}

	var parsed artifactsFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	for _, c := range parsed.Contracts {
		if c.ContractName == "" {
			continue
		}
		into[c.ContractName] = c
	}
	return nil
}
