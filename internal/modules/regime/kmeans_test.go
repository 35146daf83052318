package regime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clusteredData() [][]float64 {
	data := make([][]float64, 0, 30)
	centers := [][]float64{{0, 0}, {10, 10}, {-10, 5}}
	offsets := []float64{-0.2, -0.1, 0, 0.1, 0.2}
	for _, center := range centers {
		for _, dx := range offsets {
			for _, dy := range []float64{-0.1, 0.1} {
				data = append(data, []float64{center[0] + dx, center[1] + dy})
			}
		}
	}
	return data
}

func TestFitKMeansSeparatesClusters(t *testing.T) {
	model, err := fitKMeans(clusteredData(), 3)
	require.NoError(t, err)
	require.Len(t, model.Centroids(), 3)

	// Points near the same center share a cluster id
	a, err := model.Nearest([]float64{0.05, 0})
	require.NoError(t, err)
	b, err := model.Nearest([]float64{-0.05, 0})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	far, err := model.Nearest([]float64{10, 10})
	require.NoError(t, err)
	assert.NotEqual(t, a, far)
}

func TestFitKMeansDeterministic(t *testing.T) {
	data := clusteredData()
	first, err := fitKMeans(data, 3)
	require.NoError(t, err)
	second, err := fitKMeans(data, 3)
	require.NoError(t, err)
	assert.Equal(t, first.Centroids(), second.Centroids())
}

func TestFitKMeansValidation(t *testing.T) {
	_, err := fitKMeans(clusteredData(), 0)
	assert.Error(t, err)

	_, err = fitKMeans([][]float64{{1, 2}, {3, 4}}, 5)
	assert.Error(t, err)

	_, err = fitKMeans([][]float64{{1, 2}, {3}}, 2)
	assert.Error(t, err)
}

func TestFitKMeansIdenticalPoints(t *testing.T) {
	// More clusters than distinct points still fits; duplicates collapse
	data := make([][]float64, 10)
	for i := range data {
		data[i] = []float64{1, 1}
	}
	model, err := fitKMeans(data, 3)
	require.NoError(t, err)

	cluster, err := model.Nearest([]float64{1, 1})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cluster, 0)
	assert.Less(t, cluster, 3)
}

func TestNearestDimensionMismatch(t *testing.T) {
	model, err := fitKMeans(clusteredData(), 3)
	require.NoError(t, err)

	_, err = model.Nearest([]float64{1, 2, 3})
	assert.Error(t, err)
}
