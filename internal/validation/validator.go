package validation

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nlordell/hdwallet/pkg/crypto/slip039"
)

var (
	hexPattern   = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	groupPattern = regexp.MustCompile(`^(\d+)\s*(?:/|of)\s*(\d+)$`)
)

func ValidateHex(input string) error {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return fmt.Errorf("hex string cannot be empty")
	}

	if len(input)%2 != 0 {
		return fmt.Errorf("hex string must have even length")
	}

	if !hexPattern.MatchString(input) {
		return fmt.Errorf("invalid hex characters")
	}

	return nil
}

// DecodeSecret decodes a hex master secret, with or without a 0x prefix,
// and checks that it can be shared.
func DecodeSecret(input string) ([]byte, error) {
	input = strings.TrimPrefix(strings.TrimSpace(input), "0x")
	if err := ValidateHex(input); err != nil {
		return nil, fmt.Errorf("invalid secret: %w", err)
	}

	secret, err := hex.DecodeString(input)
	if err != nil {
		return nil, fmt.Errorf("failed to decode secret: %w", err)
	}

	if err := ValidateSecretLength(len(secret)); err != nil {
		return nil, err
	}

	return secret, nil
}

func ValidateSecretLength(size int) error {
	if size < slip039.MinMasterSecretLength || size%2 != 0 {
		return fmt.Errorf("secret must be an even number of bytes, at least %d (got %d)",
			slip039.MinMasterSecretLength, size)
	}
	return nil
}

// ParseGroups parses a comma separated list of member thresholds and counts
// such as "2/3,3/5" or "2of3, 3of5".
func ParseGroups(spec string) ([]slip039.GroupConfiguration, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("group list cannot be empty")
	}

	parts := strings.Split(spec, ",")
	groups := make([]slip039.GroupConfiguration, 0, len(parts))
	for i, part := range parts {
		match := groupPattern.FindStringSubmatch(strings.TrimSpace(part))
		if match == nil {
			return nil, fmt.Errorf("group %d: expected THRESHOLD/COUNT, got %q", i+1, part)
		}

		threshold, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("group %d: invalid threshold: %w", i+1, err)
		}
		count, err := strconv.Atoi(match[2])
		if err != nil {
			return nil, fmt.Errorf("group %d: invalid count: %w", i+1, err)
		}

		if err := ValidateSplitParams(count, threshold); err != nil {
			return nil, fmt.Errorf("group %d: %w", i+1, err)
		}

		groups = append(groups, slip039.GroupConfiguration{
			MemberThreshold: byte(threshold),
			MemberCount:     byte(count),
		})
	}

	if len(groups) > slip039.MaxShareCount {
		return nil, fmt.Errorf("at most %d groups are allowed (got %d)", slip039.MaxShareCount, len(groups))
	}

	return groups, nil
}

func ValidateSplitParams(parts, threshold int) error {
	if parts < 1 || parts > slip039.MaxShareCount {
		return fmt.Errorf("parts must be between 1 and %d (got %d)", slip039.MaxShareCount, parts)
	}

	if threshold < 1 || threshold > parts {
		return fmt.Errorf("threshold must be between 1 and %d (got %d)", parts, threshold)
	}

	return nil
}

func ValidateIterationExponent(e int) error {
	if e < 0 || e >= slip039.MaxIterationExponent {
		return fmt.Errorf("iteration exponent must be between 0 and %d (got %d)", slip039.MaxIterationExponent-1, e)
	}
	return nil
}

// ParseIndices parses word indices separated by whitespace or commas.
func ParseIndices(input string) ([]int, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '[' || r == ']'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no word indices given")
	}

	indices := make([]int, len(fields))
	for i, field := range fields {
		index, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i+1, err)
		}
		if index < 0 || index >= slip039.RadixSize {
			return nil, fmt.Errorf("index %d: %d is out of range 0-%d", i+1, index, slip039.RadixSize-1)
		}
		indices[i] = index
	}

	return indices, nil
}

func ValidatePassphrase(passphrase string) error {
	if len(passphrase) > 256 {
		return fmt.Errorf("passphrase too long (max 256 characters)")
	}

	for i, ch := range passphrase {
		if ch == 0 {
			return fmt.Errorf("passphrase contains null character at position %d", i)
		}

		// SLIP-0039 passphrases are printable ASCII
		if ch < 32 || ch > 126 {
			return fmt.Errorf("passphrase contains a non-printable or non-ASCII character at position %d", i)
		}
	}

	return nil
}

// SanitizeInput trims every line and normalizes line endings.
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")

	lines := strings.Split(input, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	return strings.Join(lines, "\n")
}

// SplitShares splits text into one share per non-empty line.
func SplitShares(input string) []string {
	var shares []string
	for _, line := range strings.Split(SanitizeInput(input), "\n") {
		if line != "" && !strings.HasPrefix(line, "#") {
			shares = append(shares, strings.Join(strings.Fields(line), " "))
		}
	}
	return shares
}
