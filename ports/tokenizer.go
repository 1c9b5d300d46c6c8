package ports

import "github.com/layer-3/walletauth/core"

// Tokenizer converts session handles to and from bearer tokens
type Tokenizer interface {
	HandleToToken(handle core.SessionHandle) (string, error)
	TokenToHandle(token string) (core.SessionHandle, error)
}
