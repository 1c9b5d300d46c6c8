package core

import (
	"strconv"
	"strings"
	"time"
)

const (
	// MessageVersion is the sign-in message protocol version
	MessageVersion = "1"

	// MessageValidity is how long a sign-in message (and signing request) stays valid
	MessageValidity = 24 * time.Hour

	// ClockSkewAllowance backdates not-before to absorb signer/verifier clock drift
	ClockSkewAllowance = time.Minute
)

// MessageConfig holds the parameters the session layer needs to build a SignInMessage
type MessageConfig struct {
	Statement      string
	Domain         string
	URI            string
	Version        string
	ChainID        int64
	Nonce          string
	IssuedAt       time.Time
	ExpirationTime time.Time
	NotBefore      time.Time
}

// NewMessageConfig builds a config valid from now-ClockSkewAllowance until now+MessageValidity
func NewMessageConfig(env Environment, statement string, chainID int64, nonce string, now time.Time) MessageConfig {
	return MessageConfig{
		Statement:      statement,
		Domain:         env.Domain,
		URI:            env.URI,
		Version:        MessageVersion,
		ChainID:        chainID,
		Nonce:          nonce,
		IssuedAt:       now,
		ExpirationTime: now.Add(MessageValidity),
		NotBefore:      now.Add(-ClockSkewAllowance),
	}
}

// SignInMessage is an EIP-4361 sign-in request bound to an address and origin
type SignInMessage struct {
	Domain         string        `json:"domain"`
	Address        WalletAddress `json:"address"`
	Statement      string        `json:"statement"`
	URI            string        `json:"uri"`
	Version        string        `json:"version"`
	ChainID        int64         `json:"chainId"`
	Nonce          string        `json:"nonce"`
	IssuedAt       time.Time     `json:"issuedAt"`
	ExpirationTime time.Time     `json:"expirationTime"`
	NotBefore      time.Time     `json:"notBefore"`
}

// NewSignInMessage binds cfg to address
func NewSignInMessage(address WalletAddress, cfg MessageConfig) *SignInMessage {
	return &SignInMessage{
		Domain:         cfg.Domain,
		Address:        address,
		Statement:      cfg.Statement,
		URI:            cfg.URI,
		Version:        cfg.Version,
		ChainID:        cfg.ChainID,
		Nonce:          cfg.Nonce,
		IssuedAt:       cfg.IssuedAt,
		ExpirationTime: cfg.ExpirationTime,
		NotBefore:      cfg.NotBefore,
	}
}

// Render returns the canonical text that the wallet signs.
// Optional lines (statement, timestamps) are omitted when empty.
func (m *SignInMessage) Render() string {
	var b strings.Builder

	b.WriteString(m.Domain)
	b.WriteString(" wants you to sign in with your Ethereum account:\n")
	b.WriteString(m.Address.String())
	b.WriteString("\n\n")
	if m.Statement != "" {
		b.WriteString(m.Statement)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	writeField(&b, "URI", m.URI)
	writeField(&b, "Version", m.Version)
	writeField(&b, "Chain ID", strconv.FormatInt(m.ChainID, 10))
	writeField(&b, "Nonce", m.Nonce)
	writeTime(&b, "Issued At", m.IssuedAt)
	writeTime(&b, "Expiration Time", m.ExpirationTime)
	writeTime(&b, "Not Before", m.NotBefore)

	return strings.TrimSuffix(b.String(), "\n")
}

func writeField(b *strings.Builder, name, value string) {
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

func writeTime(b *strings.Builder, name string, t time.Time) {
	if t.IsZero() {
		return
	}
	writeField(b, name, t.UTC().Format(time.RFC3339))
}
