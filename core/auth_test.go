package core_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/walletauth/core"
)

func TestParseWalletAddress(t *testing.T) {
	valid := []string{
		"0xAbC123000000000000000000000000000000dEaD",
		"0x0000000000000000000000000000000000000000",
		"0xffffffffffffffffffffffffffffffffffffffff",
		"0x52908400098527886E0F7030069857D2E4169EE7",
	}
	for _, s := range valid {
		addr, err := core.ParseWalletAddress(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, addr.String())
	}

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"prefix only", "0x"},
		{"no prefix", "AbC123000000000000000000000000000000dEaDff"},
		{"upper prefix", "0XAbC123000000000000000000000000000000dEaD"},
		{"too short", "0xAbC1230000000000000000000000000000dEaD"},
		{"too long", "0xAbC1230000000000000000000000000000000dEaD"},
		{"non hex", "0xAbC123000000000000000000000000000000dEaG"},
		{"whitespace", " 0xAbC123000000000000000000000000000000dEa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := core.ParseWalletAddress(tt.in)
			assert.ErrorIs(t, err, core.ErrMalformedAddress)
		})
	}
}

func TestWalletAddressEqual(t *testing.T) {
	a := core.WalletAddress("0xAbC123000000000000000000000000000000dEaD")
	b := core.WalletAddress(strings.ToLower(a.String()))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal("0x0000000000000000000000000000000000000000"))
}
