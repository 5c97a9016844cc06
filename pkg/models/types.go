package models

import (
	"time"
)

/*
LOAD → types pour charger le journal de commandes brut.
*/

// Order représente une ligne du journal de commandes, avec les champs
// dérivés attachés par le feature deriver (vides tant que Derive n'a pas
// été appliqué).
type Order struct {
	CustomerID  string    `json:"customer_id"`
	OrderID     string    `json:"order_id"`
	OrderedAt   time.Time `json:"ordered_at"`
	DeliveredAt time.Time `json:"delivered_at"`
	OrderValue  float64   `json:"order_value"`
	RawDiscount string    `json:"discounts_and_offers"`
	RawPayment  string    `json:"-"`

	// Champs dérivés (voir pkg/features).
	OrderDate     string  `json:"order_date"`
	OrderTime     string  `json:"order_time"`
	DeliveryDate  string  `json:"delivery_date"`
	DeliveryTime  string  `json:"delivery_time"`
	Discount      float64 `json:"discount"`
	OrderPeriod   string  `json:"order_period"`
	OrderWeek     int     `json:"order_week"`
	PaymentMethod string  `json:"payment_method"`
}

/*
CONTEXT → jeu de données immuable, construit une seule fois au démarrage.
*/

// Dataset est le contexte partagé par tous les calculs : la liste des
// commandes dérivées, un index client → indices de commandes dans l'ordre
// de première apparition, et la date de commande maximale du jeu complet.
// Jamais modifié après construction.
type Dataset struct {
	Orders    []Order
	customers []string
	byCust    map[string][]int
	maxOrder  time.Time
}

// NewDataset indexe les commandes déjà dérivées. L'ordre d'itération des
// clients suit leur première apparition dans le journal.
func NewDataset(orders []Order) *Dataset {
	ds := &Dataset{
		Orders: orders,
		byCust: make(map[string][]int),
	}
	for i, o := range orders {
		if _, seen := ds.byCust[o.CustomerID]; !seen {
			ds.customers = append(ds.customers, o.CustomerID)
		}
		ds.byCust[o.CustomerID] = append(ds.byCust[o.CustomerID], i)
		if o.OrderedAt.After(ds.maxOrder) {
			ds.maxOrder = o.OrderedAt
		}
	}
	return ds
}

// Customers retourne les identifiants clients distincts, dans l'ordre de
// première apparition.
func (ds *Dataset) Customers() []string { return ds.customers }

// OrdersFor retourne les commandes d'un client, dans l'ordre du journal.
// Le booléen est faux si l'identifiant est inconnu.
func (ds *Dataset) OrdersFor(customerID string) ([]Order, bool) {
	idx, ok := ds.byCust[customerID]
	if !ok {
		return nil, false
	}
	out := make([]Order, 0, len(idx))
	for _, i := range idx {
		out = append(out, ds.Orders[i])
	}
	return out, true
}

// MaxOrderedAt est la date de commande maximale du jeu de données complet,
// point de référence de la récence RFM (et non l'horloge murale).
func (ds *Dataset) MaxOrderedAt() time.Time { return ds.maxOrder }

/*
COMPUTE → structures de résultat exportées par le pipeline.
*/

// Metric est une ligne nom/valeur des métriques d'un client. Les métriques
// non définies pour un client (ex: écart moyen entre commandes avec une
// seule commande) sont simplement absentes de la liste.
type Metric struct {
	Name  string `json:"metric"`
	Value any    `json:"value"`
}

// RFMRecord contient les trois métriques RFM d'un client, plus le label de
// cluster une fois la segmentation faite. Le label est un identifiant, pas
// un rang.
type RFMRecord struct {
	CustomerID string  `json:"customer_id"`
	Recency    int     `json:"recency"`
	Frequency  int     `json:"frequency"`
	Monetary   float64 `json:"monetary"`
	Cluster    int     `json:"cluster"`
}

// Centroid est le centre d'un cluster en unités RFM d'origine, arrondi à
// l'entier pour l'affichage.
type Centroid struct {
	Cluster        int    `json:"cluster"`
	Recency        int    `json:"recency"`
	Frequency      int    `json:"frequency"`
	Monetary       int    `json:"monetary"`
	Interpretation string `json:"interpretation"`
}

// ScalerParams contient les paramètres de standardisation ajustés sur la
// population complète (moyenne et écart-type population, par feature).
// Transmis par valeur : aucun état partagé entre deux exécutions.
type ScalerParams struct {
	Mean [3]float64 `json:"mean"`
	Std  [3]float64 `json:"std"`
}

// SegmentationResult est l'artefact d'une exécution de segmentation.
// Possédé par cette exécution : jamais muté, recalculé à chaque requête.
type SegmentationResult struct {
	RunID     string       `json:"run_id"`
	Customers []RFMRecord  `json:"customers"`
	Centroids []Centroid   `json:"centroids"`
	Scaler    ScalerParams `json:"scaler"`
}

// CLVRecord attache l'estimation de valeur vie client à une ligne RFM.
type CLVRecord struct {
	RFMRecord
	CLV float64 `json:"clv"`
}
