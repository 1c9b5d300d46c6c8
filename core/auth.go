package core

import (
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// AddressLength is the length of a 0x-prefixed hex wallet address
const AddressLength = 2 + 2*common.AddressLength

// ErrMalformedAddress is returned when an address is not 0x followed by 40 hex digits
var ErrMalformedAddress = errors.New("address must be 0x followed by 40 hex digits")

// WalletAddress is an Ethereum account address exactly as the host wallet reported it
type WalletAddress string

// ParseWalletAddress validates s and returns it as a WalletAddress.
// Case is preserved; no checksum is enforced.
func ParseWalletAddress(s string) (WalletAddress, error) {
	if len(s) != AddressLength || !strings.HasPrefix(s, "0x") || !common.IsHexAddress(s) {
		return "", ErrMalformedAddress
	}
	return WalletAddress(s), nil
}

// String returns the address text
func (a WalletAddress) String() string {
	return string(a)
}

// Equal compares two addresses ignoring hex case
func (a WalletAddress) Equal(other WalletAddress) bool {
	return strings.EqualFold(string(a), string(other))
}

// Signature is the hex-encoded signature returned by the host wallet
type Signature string

// WalletUser is the account currently bound to the host wallet
type WalletUser struct {
	WalletAddress string // Empty when no account is connected
}

// SignatureStatus is the outcome reported by the host wallet for a signing request
type SignatureStatus string

const (
	SignatureStatusSuccess SignatureStatus = "success"
	SignatureStatusError   SignatureStatus = "error"
)

// SignatureRequest asks the host wallet to sign Statement.
// ExpirationTime and NotBefore bound the validity of the request itself.
type SignatureRequest struct {
	Nonce          string
	RequestID      string
	ExpirationTime time.Time
	NotBefore      time.Time
	Statement      string
}

// SignatureResponse is the host wallet reply to a SignatureRequest
type SignatureResponse struct {
	Status    SignatureStatus
	Signature string
	Reason    string // Optional wallet-provided detail for an error status
}

// MaterializeRequest carries everything the session layer needs to bind a session
type MaterializeRequest struct {
	Address   WalletAddress
	Message   string // Rendered sign-in message, byte-for-byte what was signed
	Signature Signature
}

// SessionHandle is the session layer's opaque representation of an authenticated session
type SessionHandle struct {
	ID          string        `json:"id"`
	Address     WalletAddress `json:"address"`
	IssuedAt    time.Time     `json:"issuedAt"`
	ExpiresAt   time.Time     `json:"expiresAt"`
	Token       string        `json:"token,omitempty"`
	Initialized bool          `json:"initialized"`
}
