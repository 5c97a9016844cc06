package calculator

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/op/go-logging"

	"customer-analytics/pkg/models"
)

var log = logging.MustGetLogger("log")

// ErrNotEnoughCustomers : moins de clients distincts que de clusters
// demandés. Condition d'erreur explicite, jamais tronquée en silence.
var ErrNotEnoughCustomers = fmt.Errorf("not enough customers to cluster")

// Interprétations rédigées par l'équipe pour la graine et le k par défaut,
// indexées par numéro brut de cluster.
var interpretations = map[int]string{
	0: "Steady mid-value customers: order regularly with moderate spend.",
	1: "High-value loyal customers: frequent recent orders, top spend.",
	2: "At-risk low-value customers: long since last order, low spend.",
}

// Segment standardise la table RFM, la partitionne en k clusters (k-means,
// graine fixe) et reconstruit les centroïdes en unités d'origine via la
// transformation inverse, arrondis à l'entier pour l'affichage. Les
// paramètres de standardisation ajustés font partie du résultat : ils sont
// transmis par valeur au consommateur, pas relus d'un état partagé.
//
// Le résultat appartient à cette exécution ; un nouvel appel produit un
// RunID et des tables neuves.
func Segment(rfm []models.RFMRecord, k int, seed int64) (*models.SegmentationResult, error) {
	if len(rfm) < k {
		return nil, fmt.Errorf("%w: %d customers for %d clusters", ErrNotEnoughCustomers, len(rfm), k)
	}

	points := make([][3]float64, len(rfm))
	for i, r := range rfm {
		points[i] = [3]float64{float64(r.Recency), float64(r.Frequency), r.Monetary}
	}

	scaler := fitScaler(points)
	assignments, centers := kmeans(transform(points, scaler), k, seed)

	customers := make([]models.RFMRecord, len(rfm))
	copy(customers, rfm)
	for i := range customers {
		customers[i].Cluster = assignments[i]
	}

	centroids := make([]models.Centroid, k)
	for c, center := range centers {
		orig := inverseTransform(center, scaler)
		interp, ok := interpretations[c]
		if !ok {
			interp = fmt.Sprintf("Cluster %d: no authored interpretation.", c)
		}
		centroids[c] = models.Centroid{
			Cluster:        c,
			Recency:        int(math.Round(orig[0])),
			Frequency:      int(math.Round(orig[1])),
			Monetary:       int(math.Round(orig[2])),
			Interpretation: interp,
		}
	}

	runID := uuid.NewString()
	log.Debugf("segmentation run %s: %d customers, k=%d seed=%d", runID, len(rfm), k, seed)

	return &models.SegmentationResult{
		RunID:     runID,
		Customers: customers,
		Centroids: centroids,
		Scaler:    scaler,
	}, nil
}
