package preprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCA_ProjectsOntoPrincipalAxis(t *testing.T) {
	p, err := NewPCA(1)
	require.NoError(t, err)

	X := dec([][]float64{{1, 2}, {2, 4}, {3, 6}, {4, 8}})
	out, err := p.FitTransform(X)
	require.NoError(t, err)
	require.Len(t, out, 4)
	require.Len(t, out[0], 1)

	// Points lie on y = 2x, so the projection is the signed distance from the mean.
	assert.InDelta(t, -1.5*2.2360679, out[0][0].InexactFloat64(), 1e-6)
	assert.InDelta(t, 1.5*2.2360679, out[3][0].InexactFloat64(), 1e-6)
	assert.Greater(t, p.ExplainedVariance[0], 0.0)

	test, err := p.Transform(dec([][]float64{{2.5, 5}}))
	require.NoError(t, err)
	assert.InDelta(t, 0, test[0][0].InexactFloat64(), 1e-9)
}

func TestPCA_Errors(t *testing.T) {
	_, err := NewPCA(0)
	require.Error(t, err)

	p, err := NewPCA(3)
	require.NoError(t, err)
	_, err = p.FitTransform(dec([][]float64{{1, 2}, {3, 4}}))
	require.Error(t, err)

	_, err = p.Clone().Transform(dec([][]float64{{1, 2}}))
	require.ErrorIs(t, err, ErrNotFitted)
}
