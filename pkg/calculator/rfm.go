package calculator

import (
	"time"

	"customer-analytics/pkg/models"
)

// ComputeRFM agrège Récence / Fréquence / Montant par client sur le jeu de
// données complet. Aucun client n'est écarté, y compris ceux à commande
// unique.
//
// Point de référence de la récence : la date de commande maximale du jeu
// complet (et non l'horloge murale) moins la date de commande maximale du
// client, en jours entiers. Le client dont la dernière commande est le
// maximum global a donc une récence de 0.
//
// Les lignes sortent dans l'ordre de première apparition des clients dans
// le journal, pour une sortie déterministe d'une exécution à l'autre.
func ComputeRFM(ds *models.Dataset) []models.RFMRecord {
	ref := ds.MaxOrderedAt()

	latest := make(map[string]time.Time)
	freq := make(map[string]int)
	monetary := make(map[string]float64)
	for _, o := range ds.Orders {
		if o.OrderedAt.After(latest[o.CustomerID]) {
			latest[o.CustomerID] = o.OrderedAt
		}
		freq[o.CustomerID]++
		monetary[o.CustomerID] += o.OrderValue
	}

	records := make([]models.RFMRecord, 0, len(freq))
	for _, id := range ds.Customers() {
		records = append(records, models.RFMRecord{
			CustomerID: id,
			Recency:    wholeDays(ref.Sub(latest[id])),
			Frequency:  freq[id],
			Monetary:   monetary[id],
		})
	}
	return records
}
