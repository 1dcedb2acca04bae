// Package domain drives a verification request from confirmation to result.
package domain

import (
	"fmt"

	"github.com/pendergraft/contraverify/internal/verification"
	"github.com/pendergraft/contraverify/internal/verification/backend"
)

// VerifyRequest is one verification invocation.
type VerifyRequest struct {
	Identity     verification.Identity
	ContractName string
	Verifier     verification.Verifier
	Network      verification.Network
	// SkipConfirmation bypasses the disclosure prompt.
	SkipConfirmation bool
	// ManifestPath is the workspace Scarb.toml; its directory is the workspace root.
	ManifestPath string
	// Artifacts are the contracts produced by the last build.
	Artifacts ArtifactSet
	// Package scopes the request to one workspace member. Not interpreted here.
	Package string
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ArtifactSet answers whether a contract was built.
type ArtifactSet interface {
	Has(contractName string) bool
}

// BackendFactory builds the backend for a verifier. Tests substitute it to
// observe or stub the collector and submitter.
type BackendFactory func(verifier verification.Verifier, network verification.Network, root string) (backend.Backend, error)

// ConfirmationPrompt is the disclosure question shown before any source is read.
func ConfirmationPrompt(verifier verification.Verifier) string {
	return fmt.Sprintf(
		"You are about to submit the entire workspace's code to the third-party chosen verifier at %s, "+
			"and the code will be publicly available through %s's APIs. Are you sure? (Y/n)",
		verifier, verifier,
	)
}
