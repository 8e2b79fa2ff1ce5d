package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEmpty(t, tok.String())
	}
}

func TestTokenStringUnknown(t *testing.T) {
	require.Equal(t, "unknown token", maxToken.String())
}

func TestReservedNames(t *testing.T) {
	for _, name := range []string{"function", "table", "require", "global",
		"report", "struct", "signature", "trace", "notrace",
		"externally_called", "listing"} {
		require.True(t, ReservedNames[name], name)
	}
	require.False(t, ReservedNames["foo"])
}
