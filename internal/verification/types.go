// Package verification defines the data shared by every stage of the
// verification submission pipeline.
package verification

import (
	"fmt"
	"strings"
)

// Network is the Starknet environment a contract is deployed to.
type Network string

const (
	Mainnet Network = "mainnet"
	Sepolia Network = "sepolia"
)

// Networks returns every supported network.
func Networks() []Network {
	return []Network{Mainnet, Sepolia}
}

// ParseNetwork parses a network name. Unknown names are rejected rather than
// mapped to a default.
func ParseNetwork(s string) (Network, error) {
	for _, n := range Networks() {
		if strings.EqualFold(s, string(n)) {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnmappedNetwork, s, joinNetworks())
}

func (n Network) String() string {
	return string(n)
}

func joinNetworks() string {
	names := make([]string, 0, len(Networks()))
	for _, n := range Networks() {
		names = append(names, string(n))
	}
	return strings.Join(names, ", ")
}

// Verifier identifies a third-party verification service.
type Verifier string

const (
	Walnut  Verifier = "walnut"
	Voyager Verifier = "voyager"
)

// DefaultVerifier is used when the caller does not pick one.
const DefaultVerifier = Walnut

// Verifiers returns every supported verifier.
func Verifiers() []Verifier {
	return []Verifier{Walnut, Voyager}
}

// ParseVerifier parses a verifier name.
func ParseVerifier(s string) (Verifier, error) {
	for _, v := range Verifiers() {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	names := make([]string, 0, len(Verifiers()))
	for _, v := range Verifiers() {
		names = append(names, string(v))
	}
	return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownVerifier, s, strings.Join(names, ", "))
}

// String returns the lowercase display name used in prompts.
func (v Verifier) String() string {
	return string(v)
}

// Identity selects what on-chain object the source is verified against.
// The only implementations are ContractAddress and ClassHash.
type Identity interface {
	identity()
	String() string
}

// ContractAddress identifies a deployed contract instance.
type ContractAddress string

func (ContractAddress) identity() {}

func (a ContractAddress) String() string { return string(a) }

// ClassHash identifies a declared contract class.
type ClassHash string

func (ClassHash) identity() {}

func (h ClassHash) String() string { return string(h) }

// Result is a successful verification submission.
type Result struct {
	// Message is the service's response body, passed through untouched.
	Message string `json:"message"`
}
