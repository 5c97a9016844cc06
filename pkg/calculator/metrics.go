package calculator

import (
	"errors"
	"math"
	"sort"
	"time"

	"customer-analytics/pkg/models"
)

// ErrCustomerNotFound : aucun enregistrement ne correspond à l'identifiant
// demandé. Condition distincte et récupérable, traduite en 404 par la
// couche transport, jamais confondue avec un échec de calcul.
var ErrCustomerNotFound = errors.New("customer not found")

// Noms des métriques exposées par CustomerMetrics.
const (
	MetricRecency          = "Recency (days)"
	MetricFrequency        = "Frequency"
	MetricMonetary         = "Monetary"
	MetricAvgOrderValue    = "Average Order Value"
	MetricPreferredPeriod  = "Preferred Order Period"
	MetricAvgGapDays       = "Average Time Between Orders (days)"
	MetricPreferredPayment = "Preferred Payment Method"
)

// CustomerMetrics calcule les métriques d'un seul client, sous forme de
// lignes nom/valeur. Seules les métriques définies pour ce client sont
// présentes : l'écart moyen entre commandes est omis (ni zéro, ni null)
// sous deux commandes.
//
// La récence est mesurée contre `now` (horloge murale), contrairement à la
// table RFM qui s'ancre sur la date maximale du jeu de données. Asymétrie
// voulue : "il y a combien de temps" pour un client, récence relative à la
// cohorte pour la table.
func CustomerMetrics(ds *models.Dataset, customerID string, now time.Time) ([]models.Metric, error) {
	orders, ok := ds.OrdersFor(customerID)
	if !ok {
		return nil, ErrCustomerNotFound
	}

	var (
		latest   time.Time
		monetary float64
	)
	for _, o := range orders {
		if o.OrderedAt.After(latest) {
			latest = o.OrderedAt
		}
		monetary += o.OrderValue
	}
	frequency := len(orders)
	recency := wholeDays(now.Sub(latest))
	avgOrder := math.Round(monetary/float64(frequency)*100) / 100

	metrics := []models.Metric{
		{Name: MetricRecency, Value: recency},
		{Name: MetricFrequency, Value: frequency},
		{Name: MetricMonetary, Value: monetary},
		{Name: MetricAvgOrderValue, Value: avgOrder},
		{Name: MetricPreferredPeriod, Value: mode(orders, func(o models.Order) string { return o.OrderPeriod })},
	}

	if gap, ok := avgGapDays(orders); ok {
		metrics = append(metrics, models.Metric{Name: MetricAvgGapDays, Value: gap})
	}

	metrics = append(metrics, models.Metric{
		Name:  MetricPreferredPayment,
		Value: mode(orders, func(o models.Order) string { return o.PaymentMethod }),
	})
	return metrics, nil
}

// mode retourne la catégorie la plus fréquente. Égalité → la première
// rencontrée dans l'ordre d'itération gagne (mode stable), pour une sortie
// reproductible : on compte d'abord, puis on rend la première catégorie
// dont le compte atteint le maximum.
func mode(orders []models.Order, key func(models.Order) string) string {
	counts := make(map[string]int)
	max := 0
	for _, o := range orders {
		k := key(o)
		counts[k]++
		if counts[k] > max {
			max = counts[k]
		}
	}
	for _, o := range orders {
		if counts[key(o)] == max {
			return key(o)
		}
	}
	return ""
}

// avgGapDays : moyenne des écarts en jours entiers entre commandes
// consécutives triées par date croissante. Faux si moins de 2 commandes.
func avgGapDays(orders []models.Order) (float64, bool) {
	if len(orders) < 2 {
		return 0, false
	}
	sorted := make([]models.Order, len(orders))
	copy(sorted, orders)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].OrderedAt.Before(sorted[j].OrderedAt) })

	total := 0
	for i := 1; i < len(sorted); i++ {
		total += wholeDays(sorted[i].OrderedAt.Sub(sorted[i-1].OrderedAt))
	}
	return float64(total) / float64(len(sorted)-1), true
}

func wholeDays(d time.Duration) int {
	return int(d.Hours() / 24)
}
