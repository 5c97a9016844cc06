package calculator

import (
	"math"
	"math/rand"
)

const kmeansMaxIterations = 100

// kmeans exécute l'algorithme de Lloyd sur des points standardisés.
// Déterministe : le générateur est local et semé, l'initialisation prend k
// points distincts d'une permutation semée, et les égalités de distance se
// résolvent au plus petit indice de cluster. Même entrée + même graine ⇒
// mêmes affectations et mêmes centres, à chaque exécution.
//
// Précondition : len(points) >= k (vérifiée par Segment).
func kmeans(points [][3]float64, k int, seed int64) (assignments []int, centers [][3]float64) {
	rng := rand.New(rand.NewSource(seed))

	centers = make([][3]float64, k)
	for i, j := range rng.Perm(len(points))[:k] {
		centers[i] = points[j]
	}

	assignments = make([]int, len(points))
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, pt := range points {
			c := nearest(pt, centers)
			if c != assignments[i] {
				assignments[i] = c
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		var (
			sums   = make([][3]float64, k)
			counts = make([]int, k)
		)
		for i, pt := range points {
			c := assignments[i]
			counts[c]++
			for f := 0; f < 3; f++ {
				sums[c][f] += pt[f]
			}
		}
		for c := 0; c < k; c++ {
			// Cluster vidé : son centre reste en place.
			if counts[c] == 0 {
				continue
			}
			for f := 0; f < 3; f++ {
				centers[c][f] = sums[c][f] / float64(counts[c])
			}
		}
	}
	return assignments, centers
}

func nearest(pt [3]float64, centers [][3]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, center := range centers {
		d := sqDist(pt, center)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func sqDist(a, b [3]float64) float64 {
	var d float64
	for f := 0; f < 3; f++ {
		diff := a[f] - b[f]
		d += diff * diff
	}
	return d
}
