// Package solana provides small helpers for Solana public keys and
// mint addresses.
package solana

import (
	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// WSOLMint is the wrapped SOL mint, used as the quote-side leg of swaps.
const WSOLMint = "So11111111111111111111111111111111111111112"

// IsValidPubkey reports whether s decodes as a 32-byte base58 key.
// Mint addresses and wallet addresses share this format.
func IsValidPubkey(s string) bool {
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == 32
}

// IsOnCurve reports whether the key lies on the ed25519 curve.
// Wallet addresses are on-curve; PDAs are not.
func IsOnCurve(s string) bool {
	decoded, err := base58.Decode(s)
	if err != nil || len(decoded) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}
