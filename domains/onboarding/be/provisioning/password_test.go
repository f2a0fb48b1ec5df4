package provisioning

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	t.Parallel()

	got, err := GeneratePassword(20)
	require.NoError(t, err)
	require.Len(t, got, 20)
	for _, r := range got {
		require.True(t, strings.ContainsRune(passwordCharset, r), "unexpected character %q", r)
	}
}

func TestGeneratePasswordDrawsDiffer(t *testing.T) {
	t.Parallel()

	first, err := GeneratePassword(32)
	require.NoError(t, err)
	second, err := GeneratePassword(32)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestGeneratePasswordRejectsNonPositiveLength(t *testing.T) {
	t.Parallel()

	for _, length := range []int{0, -5} {
		_, err := GeneratePassword(length)
		require.Error(t, err)
	}
}
