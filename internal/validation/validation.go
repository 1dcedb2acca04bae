// Package validation provides input validation for contraverify.
package validation

import (
	"errors"
	"math/big"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// fieldPrime is the Starknet field prime, 2^251 + 17*2^192 + 1.
var fieldPrime, _ = new(big.Int).SetString("800000000000011000000000000000000000000000000000000000000000001", 16)

// Cairo identifiers: letter or underscore, then letters, digits, underscores
var contractNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateFelt validates a field element given as a 0x-prefixed hex string,
// as used for contract addresses and class hashes
func ValidateFelt(s string) error {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return errors.New("invalid felt: must start with 0x")
	}
	digits := s[2:]
	if len(digits) == 0 {
		return errors.New("invalid felt: no hex digits after 0x")
	}
	if len(digits) > 64 {
		return errors.New("invalid felt: more than 64 hex digits")
	}
	for _, c := range digits {
		isDigit := c >= '0' && c <= '9'
		isLowerHex := c >= 'a' && c <= 'f'
		isUpperHex := c >= 'A' && c <= 'F'
		if !isDigit && !isLowerHex && !isUpperHex {
			return errors.New("invalid felt: contains non-hex characters")
		}
	}

	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return errors.New("invalid felt: not a hex number")
	}
	if v.Cmp(fieldPrime) >= 0 {
		return errors.New("invalid felt: value exceeds the field prime")
	}
	return nil
}

// ValidateContractName validates a Cairo contract module name
func ValidateContractName(name string) error {
	if name == "" {
		return errors.New("contract name cannot be empty")
	}
	if len(name) > 128 {
		return errors.New("contract name too long (max 128 chars)")
	}
	if !contractNameRegex.MatchString(name) {
		return errors.New("invalid contract name: must be a Cairo identifier")
	}
	return nil
}

// ValidateVersion validates a semantic version string
func ValidateVersion(v string) error {
	// Normalize: strip leading 'v' if present, then add it back for semver library
	normalized := strings.TrimPrefix(v, "v")
	if normalized == "" {
		return errors.New("version cannot be empty")
	}

	// semver library expects version to start with 'v'
	if !semver.IsValid("v" + normalized) {
		return errors.New("invalid semver version: must be in format X.Y.Z or X.Y.Z-prerelease")
	}

	// semver.IsValid accepts "v1" and "v1.2"; Scarb requires all three parts
	mainPart := strings.SplitN(normalized, "-", 2)[0]
	mainPart = strings.SplitN(mainPart, "+", 2)[0]
	if strings.Count(mainPart, ".") < 2 {
		return errors.New("invalid semver version: must be in format X.Y.Z (major.minor.patch)")
	}

	return nil
}
