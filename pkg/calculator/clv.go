package calculator

import (
	"customer-analytics/pkg/models"
)

// EstimateCLV attache une estimation de valeur vie client à chaque ligne
// RFM segmentée : valeur d'achat moyenne × fréquence × durée de vie
// supposée en mois. Les deux premiers facteurs se simplifient en Montant,
// mais la forme développée est conservée pour qu'une révision puisse
// restreindre l'un des deux indépendamment.
//
// Opère sur une copie, ne mute aucun état partagé.
func EstimateCLV(customers []models.RFMRecord, lifetimeMonths int) []models.CLVRecord {
	out := make([]models.CLVRecord, len(customers))
	for i, r := range customers {
		avgPurchase := r.Monetary / float64(r.Frequency)
		out[i] = models.CLVRecord{
			RFMRecord: r,
			CLV:       avgPurchase * float64(r.Frequency) * float64(lifetimeMonths),
		}
	}
	return out
}
