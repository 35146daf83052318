package regime

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// kMeans is a small deterministic Lloyd's k-means model used for the
// cluster-based classification path. Fitting uses k-means++ seeding with a
// fixed source and multiple restarts, keeping the lowest-inertia solution
// so identical training data always yields identical centroids.
type kMeans struct {
	centroids [][]float64
}

const (
	kmeansSeed     = 42
	kmeansRestarts = 10
	kmeansMaxIter  = 100
)

// fitKMeans partitions data into k clusters. All rows must share the same
// dimensionality and there must be at least k rows.
func fitKMeans(data [][]float64, k int) (*kMeans, error) {
	if k <= 0 {
		return nil, fmt.Errorf("cluster count must be positive, got %d", k)
	}
	if len(data) < k {
		return nil, fmt.Errorf("need at least %d samples to fit %d clusters, got %d", k, k, len(data))
	}
	dim := len(data[0])
	for _, row := range data {
		if len(row) != dim {
			return nil, fmt.Errorf("inconsistent feature dimensions: %d vs %d", len(row), dim)
		}
	}

	rng := rand.New(rand.NewSource(kmeansSeed))

	var best [][]float64
	bestInertia := math.Inf(1)
	for restart := 0; restart < kmeansRestarts; restart++ {
		centroids := seedCentroids(data, k, rng)
		centroids, inertia := lloyd(data, centroids)
		if inertia < bestInertia {
			bestInertia = inertia
			best = centroids
		}
	}

	return &kMeans{centroids: best}, nil
}

// Nearest assigns x to the closest centroid, returning its cluster id.
func (m *kMeans) Nearest(x []float64) (int, error) {
	if len(m.centroids) == 0 {
		return 0, fmt.Errorf("model has no centroids")
	}
	if len(x) != len(m.centroids[0]) {
		return 0, fmt.Errorf("feature dimension %d does not match model dimension %d", len(x), len(m.centroids[0]))
	}
	nearest := 0
	minDist := math.Inf(1)
	for i, c := range m.centroids {
		if d := floats.Distance(x, c, 2); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest, nil
}

// Centroids returns the fitted cluster centers
func (m *kMeans) Centroids() [][]float64 {
	return m.centroids
}

// seedCentroids implements k-means++ initialization: the first centroid is
// drawn uniformly, each subsequent one proportionally to squared distance
// from the nearest already-chosen centroid.
func seedCentroids(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, cloneRow(data[rng.Intn(len(data))]))

	distances := make([]float64, len(data))
	for len(centroids) < k {
		total := 0.0
		for i, row := range data {
			minDist := math.Inf(1)
			for _, c := range centroids {
				if d := floats.Distance(row, c, 2); d < minDist {
					minDist = d
				}
			}
			distances[i] = minDist * minDist
			total += distances[i]
		}

		if total == 0 {
			// All points coincide with existing centroids
			centroids = append(centroids, cloneRow(data[rng.Intn(len(data))]))
			continue
		}

		target := rng.Float64() * total
		cumulative := 0.0
		chosen := len(data) - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, cloneRow(data[chosen]))
	}
	return centroids
}

// lloyd iterates assignment and centroid updates until convergence or the
// iteration cap, returning the final centroids and total inertia.
func lloyd(data [][]float64, centroids [][]float64) ([][]float64, float64) {
	k := len(centroids)
	dim := len(data[0])
	assignments := make([]int, len(data))

	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := false
		for i, row := range data {
			nearest := 0
			minDist := math.Inf(1)
			for j, c := range centroids {
				if d := floats.Distance(row, c, 2); d < minDist {
					minDist = d
					nearest = j
				}
			}
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for j := range sums {
			sums[j] = make([]float64, dim)
		}
		for i, row := range data {
			floats.Add(sums[assignments[i]], row)
			counts[assignments[i]]++
		}
		for j := range centroids {
			if counts[j] == 0 {
				// Empty cluster keeps its previous centroid
				continue
			}
			floats.Scale(1/float64(counts[j]), sums[j])
			centroids[j] = sums[j]
		}
	}

	inertia := 0.0
	for i, row := range data {
		d := floats.Distance(row, centroids[assignments[i]], 2)
		inertia += d * d
	}
	return centroids, inertia
}

func cloneRow(row []float64) []float64 {
	out := make([]float64, len(row))
	copy(out, row)
	return out
}
