package reference

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountryOptionsMirrorCountries(t *testing.T) {
	t.Parallel()

	options := CountryOptions()
	require.Len(t, options, len(Countries()))
	require.Equal(t, "AR", options[0].Value)
	require.Equal(t, "Argentina", options[0].Label)
}

func TestCurrenciesAreDistinctAndSorted(t *testing.T) {
	t.Parallel()

	currencies := Currencies()
	require.True(t, sort.StringsAreSorted(currencies))

	seen := map[string]bool{}
	for _, c := range currencies {
		require.False(t, seen[c], "duplicate currency %q", c)
		seen[c] = true
	}
	// EUR appears for several countries but only once here.
	require.True(t, seen["EUR"])
}

func TestTimezonesAreSorted(t *testing.T) {
	t.Parallel()

	require.True(t, sort.StringsAreSorted(Timezones()))
}

func TestContains(t *testing.T) {
	t.Parallel()

	require.True(t, Contains(Languages, "en"))
	require.False(t, Contains(Languages, "xx"))
	require.True(t, Contains(Themes, "dark"))
}

func TestStepsAreOrdered(t *testing.T) {
	t.Parallel()

	require.Len(t, Steps, 7)
	for i, step := range Steps {
		require.Equal(t, i+1, step.Number)
		require.NotEmpty(t, step.Path)
	}
}

func TestLicenceTextIsEmbedded(t *testing.T) {
	t.Parallel()

	require.Contains(t, LicenceText(), "LICENCE")
}
