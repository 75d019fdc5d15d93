package cases

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/bridgepsci/internal/params"
)

func TestResolveBaselineEqualsBase(t *testing.T) {
	base := params.Defaults()
	got, err := Resolve(base, " BaseLine ", &Table{})
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestResolveLastWriteWins(t *testing.T) {
	base := params.Defaults()
	table := &Table{}
	table.Add(Override{Case: "soft", Key: "bearing_multiplier", Value: 0.5})
	table.Add(Override{Case: "other", Key: "bearing_multiplier", Value: 0.9})
	table.Add(Override{Case: "SOFT", Key: "bearing_multiplier", Value: 0.4})

	got, err := Resolve(base, "soft", table)
	require.NoError(t, err)
	m, err := got.Float("bearing_multiplier")
	require.NoError(t, err)
	assert.Equal(t, 0.4, m)

	orig, err := base.Float("bearing_multiplier")
	require.NoError(t, err)
	assert.Equal(t, 0.3, orig)
}

func TestResolveUnknownCase(t *testing.T) {
	table := &Table{}
	table.Add(Override{Case: "case2", Key: "zeta", Value: 0.02})

	_, err := Resolve(params.Defaults(), "case42", table)
	var uc *UnknownCaseError
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, "case42", uc.Label)
	assert.Equal(t, []string{"baseline", "case2"}, uc.Known)
}

func TestResolveDeclaredAndFallbackLabels(t *testing.T) {
	base := params.Defaults()
	table := &Table{Fallback: Builtin()}
	table.Declare("empty")

	got, err := Resolve(base, "empty", table)
	require.NoError(t, err)
	assert.Equal(t, base, got)

	// The fallback only makes the label known; its rows stay unapplied.
	got, err = Resolve(base, "case2", table)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestBuiltinCases(t *testing.T) {
	base := params.Defaults()
	table := Builtin()

	c2, err := Resolve(base, "case2", table)
	require.NoError(t, err)
	m, err := c2.Float("bearing_multiplier")
	require.NoError(t, err)
	assert.Equal(t, 0.5, m)

	c5, err := Resolve(base, "case5", table)
	require.NoError(t, err)
	e, err := c5.Floats("E_girder1")
	require.NoError(t, err)
	assert.InDelta(t, 19600, e[0], 1e-9)
	assert.Equal(t, 28000.0, e[1])

	c9, err := Resolve(base, "case9", table)
	require.NoError(t, err)
	deck, err := c9.Floats("E_deck1")
	require.NoError(t, err)
	require.Len(t, deck, 7)
	for _, d := range deck {
		assert.InDelta(t, 17500, d, 1e-9)
	}

	c1, err := Resolve(base, "case1", table)
	require.NoError(t, err)
	assert.Equal(t, base, c1)

	assert.Equal(t, []string{"baseline", "case1", "case2", "case5", "case6", "case9"}, table.Labels())
}

func TestResolveBadPath(t *testing.T) {
	table := &Table{}
	table.Add(Override{Case: "x", Key: "$.E_girder1[99]", Value: 1.0})
	_, err := Resolve(params.Defaults(), "x", table)
	var oe *OverrideError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "$.E_girder1[99]", oe.Key)
}

func TestResolveRejectsDerivedKeys(t *testing.T) {
	for _, key := range []string{"$.Bearing_Stiffness[0][2]", "Bearing_Stiffness", "yt3", "$.I_n"} {
		table := &Table{}
		table.Add(Override{Case: "soft", Key: key, Value: 123.0})
		_, err := Resolve(params.Defaults(), "soft", table)
		var oe *OverrideError
		require.ErrorAs(t, err, &oe, key)
		assert.Equal(t, key, oe.Key)
		assert.ErrorIs(t, err, ErrDerivedKey)
		assert.Contains(t, err.Error(), "Bearing_Base_Stiffness")
	}

	table := &Table{}
	table.Add(Override{Case: "soft", Key: "$.Bearing_Base_Stiffness[0][2]", Value: 123.0})
	got, err := Resolve(params.Defaults(), "soft", table)
	require.NoError(t, err)
	k, err := got.Matrix("Bearing_Base_Stiffness")
	require.NoError(t, err)
	assert.Equal(t, 123.0, k[0][2])
}

const sampleYAML = `
cases:
  - label: Soft
    description: softer bearings
    overrides:
      - key: bearing_multiplier
        value: 0.5
        type: float
      - key: numEigen
        value: 5
        type: int
      - key: E_deck1
        value: [17500, 17500, 17500, 17500, 17500, 17500, 17500]
        type: list[float]
  - label: same
    overrides: []
`

func TestDecodeYAML(t *testing.T) {
	table, err := DecodeYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"baseline", "same", "soft"}, table.Labels())

	got, err := Resolve(params.Defaults(), "soft", table)
	require.NoError(t, err)
	n, err := got.Int("numEigen")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	deck, err := got.Floats("E_deck1")
	require.NoError(t, err)
	assert.Len(t, deck, 7)

	same, err := Resolve(params.Defaults(), "same", table)
	require.NoError(t, err)
	assert.Equal(t, params.Defaults(), same)
}

func TestDecodeYAMLBadValue(t *testing.T) {
	_, err := DecodeYAML(strings.NewReader(`
cases:
  - label: bad
    overrides:
      - key: numEigen
        value: 2.5
        type: int
`))
	var pe *params.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "numEigen", pe.Key)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	table, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 3)
}
