package siwe

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/layer-3/walletauth/core"
)

const preambleSuffix = " wants you to sign in with your Ethereum account:"

// ParseMessage parses text produced by core.SignInMessage.Render
func ParseMessage(text string) (*core.SignInMessage, error) {
	lines := strings.Split(text, "\n")
	if len(lines) < 5 {
		return nil, fmt.Errorf("%w: too short", ErrInvalidMessage)
	}

	domain, ok := strings.CutSuffix(lines[0], preambleSuffix)
	if !ok || domain == "" {
		return nil, fmt.Errorf("%w: missing preamble", ErrInvalidMessage)
	}

	address, err := core.ParseWalletAddress(lines[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	if lines[2] != "" {
		return nil, fmt.Errorf("%w: expected blank line after address", ErrInvalidMessage)
	}

	msg := &core.SignInMessage{Domain: domain, Address: address}

	i := 3
	if lines[i] != "" {
		msg.Statement = lines[i]
		i++
	}
	if i >= len(lines) || lines[i] != "" {
		return nil, fmt.Errorf("%w: expected blank line after statement", ErrInvalidMessage)
	}
	i++

	seen := make(map[string]bool)
	for ; i < len(lines); i++ {
		name, value, ok := strings.Cut(lines[i], ": ")
		if !ok {
			return nil, fmt.Errorf("%w: malformed field %q", ErrInvalidMessage, lines[i])
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidMessage, name)
		}
		seen[name] = true

		if err := setField(msg, name, value); err != nil {
			return nil, err
		}
	}

	for _, required := range []string{"URI", "Version", "Chain ID", "Nonce"} {
		if !seen[required] {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidMessage, required)
		}
	}

	return msg, nil
}

func setField(msg *core.SignInMessage, name, value string) error {
	var err error
	switch name {
	case "URI":
		msg.URI = value
	case "Version":
		msg.Version = value
	case "Chain ID":
		msg.ChainID, err = strconv.ParseInt(value, 10, 64)
	case "Nonce":
		msg.Nonce = value
	case "Issued At":
		msg.IssuedAt, err = time.Parse(time.RFC3339, value)
	case "Expiration Time":
		msg.ExpirationTime, err = time.Parse(time.RFC3339, value)
	case "Not Before":
		msg.NotBefore, err = time.Parse(time.RFC3339, value)
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidMessage, name)
	}
	if err != nil {
		return fmt.Errorf("%w: bad %s: %v", ErrInvalidMessage, name, err)
	}
	return nil
}
