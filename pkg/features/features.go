package features

import (
	"regexp"
	"strconv"
	"time"

	"customer-analytics/pkg/models"
)

// Catégories de période de commande. Les trois intervalles partitionnent
// les 24 heures : [06,12) → Morning, [12,18) → Afternoon, le reste → Night.
const (
	PeriodMorning   = "Morning"
	PeriodAfternoon = "Afternoon"
	PeriodNight     = "Night"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Premier nombre (entier ou décimal) trouvé dans le descripteur de remise.
var discountRe = regexp.MustCompile(`(\d+\.?\d*)`)

// Table de synonymes des moyens de paiement. Substitution littérale :
// toute valeur absente de la table passe inchangée.
var paymentSynonyms = map[string]string{
	"Cash on Delivery": "COD",
	"Credit Card":      "CC",
	"Digital Wallet":   "UPI",
}

// Derive attache les champs dérivés à chaque commande : dates et heures
// séparées, remise numérique, période de commande, semaine du mois et moyen
// de paiement normalisé. Fonction pure sur une copie, ne supprime aucune
// ligne, idempotente (les champs dérivés sont recalculés depuis les champs
// bruts).
func Derive(orders []models.Order) []models.Order {
	out := make([]models.Order, len(orders))
	for i, o := range orders {
		o.OrderDate = o.OrderedAt.Format(dateLayout)
		o.OrderTime = o.OrderedAt.Format(timeLayout)
		o.DeliveryDate = o.DeliveredAt.Format(dateLayout)
		o.DeliveryTime = o.DeliveredAt.Format(timeLayout)
		o.Discount = ExtractDiscount(o.RawDiscount)
		o.OrderPeriod = OrderPeriod(o.OrderedAt)
		o.OrderWeek = WeekOfMonth(o.OrderedAt)
		o.PaymentMethod = NormalizePayment(o.RawPayment)
		out[i] = o
	}
	return out
}

// ExtractDiscount extrait la valeur numérique du descripteur de remise
// ("10% off", "Promo 5.5", ...). Aucun nombre → 0, jamais une erreur.
func ExtractDiscount(raw string) float64 {
	m := discountRe.FindString(raw)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// OrderPeriod classe l'instant de commande en Morning / Afternoon / Night.
func OrderPeriod(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 6 && h < 12:
		return PeriodMorning
	case h >= 12 && h < 18:
		return PeriodAfternoon
	default:
		return PeriodNight
	}
}

// WeekOfMonth calcule la semaine du mois (1..5) par bacs fixes de 7 jours
// ancrés sur le jour de semaine du 1er du mois (lundi = 0), et non par
// numéro de semaine calendaire :
//
//	((jour + weekday(1er du mois) - 1) / 7) + 1
//
// Borné à 5 : un mois dont le 1er tombe un dimanche déborderait sinon sur
// une sixième valeur en fin de mois, hors des catégories ordinales 1..5.
func WeekOfMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	firstWeekday := (int(first.Weekday()) + 6) % 7 // lundi = 0
	adjusted := t.Day() + firstWeekday
	week := (adjusted-1)/7 + 1
	if week > 5 {
		week = 5
	}
	return week
}

// NormalizePayment applique la table de synonymes au moyen de paiement.
func NormalizePayment(raw string) string {
	if norm, ok := paymentSynonyms[raw]; ok {
		return norm
	}
	return raw
}
