package siwe

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/layer-3/walletauth/core"
)

// VerifySignature checks that signature is an EIP-191 signature of text by address
func VerifySignature(text string, signature core.Signature, address core.WalletAddress) error {
	decodedSig, err := hexutil.Decode(string(signature))
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", ErrInvalidSignature)
	}
	if len(decodedSig) != crypto.SignatureLength {
		return fmt.Errorf("signature must be %d bytes: %w", crypto.SignatureLength, ErrInvalidSignature)
	}

	sig := make([]byte, len(decodedSig))
	copy(sig, decodedSig)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(text)), sig)
	if err != nil {
		return fmt.Errorf("failed to recover signer: %w", ErrInvalidSignature)
	}

	if crypto.PubkeyToAddress(*pub) != common.HexToAddress(address.String()) {
		return ErrInvalidSignature
	}

	return nil
}
