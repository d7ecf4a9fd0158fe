package chain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Well-known unit scales.
const (
	DecimalsEther = 18
	DecimalsGwei  = 9
)

// ErrInvalidAmount is returned when a decimal amount cannot be parsed.
var ErrInvalidAmount = errors.New("invalid amount")

var ten = big.NewInt(10)

func pow10(n int) *big.Int {
	return new(big.Int).Exp(ten, big.NewInt(int64(n)), nil)
}

// FormatUnits renders v scaled down by 10^decimals as an exact decimal string
// with trailing zeros trimmed but at least one fractional digit: 1.0, 0.05,
// 1234.5678. decimals <= 0 renders the integer.
func FormatUnits(v *big.Int, decimals int) string {
	if v == nil {
		return "0.0"
	}
	if decimals <= 0 {
		return v.String()
	}

	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)
	whole, frac := new(big.Int).QuoRem(abs, pow10(decimals), new(big.Int))

	fracStr := frac.String()
	if pad := decimals - len(fracStr); pad > 0 {
		fracStr = strings.Repeat("0", pad) + fracStr
	}
	fracStr = strings.TrimRight(fracStr, "0")
	if fracStr == "" {
		fracStr = "0"
	}

	s := whole.String() + "." + fracStr
	if neg {
		s = "-" + s
	}
	return s
}

// ParseUnits converts a decimal string such as "0.01" into base units scaled
// by 10^decimals. More fractional digits than decimals is an error.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if decimals < 0 {
		return nil, fmt.Errorf("%w: negative decimals %d", ErrInvalidAmount, decimals)
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q has no digits", ErrInvalidAmount, s)
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, decimals)
	}
	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
			}
		}
	}

	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

// FormatEther renders wei as ETH.
func FormatEther(wei *big.Int) string { return FormatUnits(wei, DecimalsEther) }

// ParseEther converts an ETH decimal string to wei.
func ParseEther(s string) (*big.Int, error) { return ParseUnits(s, DecimalsEther) }

// FormatGwei renders wei as gwei.
func FormatGwei(wei *big.Int) string { return FormatUnits(wei, DecimalsGwei) }

// Gwei returns n gwei in wei.
func Gwei(n int64) *big.Int { return new(big.Int).Mul(big.NewInt(n), pow10(DecimalsGwei)) }
