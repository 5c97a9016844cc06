package calculator

import (
	"gonum.org/v1/gonum/stat"

	"customer-analytics/pkg/models"
)

// fitScaler ajuste la standardisation z-score (moyenne nulle, variance
// unitaire) sur la population complète. Écart-type population, pas
// échantillon ; une feature constante (écart-type 0) garde un diviseur de 1
// pour ne pas produire de NaN.
func fitScaler(points [][3]float64) models.ScalerParams {
	var p models.ScalerParams
	col := make([]float64, len(points))
	for f := 0; f < 3; f++ {
		for i, pt := range points {
			col[i] = pt[f]
		}
		p.Mean[f] = stat.Mean(col, nil)
		p.Std[f] = stat.PopStdDev(col, nil)
		if p.Std[f] == 0 {
			p.Std[f] = 1
		}
	}
	return p
}

// transform applique la standardisation à une copie des points.
func transform(points [][3]float64, p models.ScalerParams) [][3]float64 {
	out := make([][3]float64, len(points))
	for i, pt := range points {
		for f := 0; f < 3; f++ {
			out[i][f] = (pt[f] - p.Mean[f]) / p.Std[f]
		}
	}
	return out
}

// inverseTransform ramène un point standardisé en unités RFM d'origine.
func inverseTransform(pt [3]float64, p models.ScalerParams) [3]float64 {
	var out [3]float64
	for f := 0; f < 3; f++ {
		out[f] = pt[f]*p.Std[f] + p.Mean[f]
	}
	return out
}
