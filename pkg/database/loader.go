package database

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"customer-analytics/pkg/config"
	"customer-analytics/pkg/models"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/op/go-logging"
	"github.com/schollz/progressbar/v3"
	_ "modernc.org/sqlite"
)

var log = logging.MustGetLogger("log")

// Colonnes requises du journal de commandes. Un en-tête CSV manquant est
// fatal au démarrage, jamais une condition par requête.
var requiredHeaders = []string{
	"Customer ID",
	"Order ID",
	"Order Date and Time",
	"Delivery Date and Time",
	"Order Value",
	"Discounts and Offers",
	"Payment Method",
}

// Mêmes sept colonnes logiques côté SQL.
const sqlColumns = "customer_id, order_id, order_datetime, delivery_datetime, order_value, discounts_and_offers, payment_method"

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// LoadOrders charge le journal de commandes depuis la source configurée,
// une seule fois au démarrage. La source est discriminée par son schéma :
//
//	chemin *.csv ou csv://  → fichier CSV
//	sqlite:// ou *.db       → fichier SQLite
//	mariadb:// ou mysql://  → MySQL/MariaDB
//	postgres://             → PostgreSQL
func LoadOrders(ctx context.Context, cfg *config.Config) ([]models.Order, error) {
	src := cfg.Source
	switch {
	case strings.HasPrefix(src, "csv://"):
		return loadCSV(strings.TrimPrefix(src, "csv://"))
	case strings.HasSuffix(src, ".csv"):
		return loadCSV(src)
	case strings.HasPrefix(src, "sqlite://"):
		return loadSQL(ctx, "sqlite", strings.TrimPrefix(src, "sqlite://"), cfg.Table)
	case strings.HasSuffix(src, ".db") || strings.HasSuffix(src, ".sqlite"):
		return loadSQL(ctx, "sqlite", src, cfg.Table)
	case strings.HasPrefix(src, "mariadb://") || strings.HasPrefix(src, "mysql://"):
		dsn, err := toMySQLDSN(src)
		if err != nil {
			return nil, err
		}
		return loadSQL(ctx, "mysql", dsn, cfg.Table)
	case strings.HasPrefix(src, "postgres://") || strings.HasPrefix(src, "postgresql://"):
		return loadSQL(ctx, "postgres", src, cfg.Table)
	default:
		return nil, fmt.Errorf("unsupported data source %q", src)
	}
}

// toMySQLDSN convertit un DSN mariadb:// ou mysql:// au format du driver
// MySQL. Tout autre format passe inchangé.
func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("dsn incomplet (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

func loadCSV(path string) ([]models.Order, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s is empty", path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, h := range requiredHeaders {
		if _, ok := cols[h]; !ok {
			return nil, fmt.Errorf("dataset %s: missing required column %q", path, h)
		}
	}

	bar := progressbar.Default(int64(len(records) - 1))
	orders := make([]models.Order, 0, len(records)-1)
	for n, rec := range records[1:] {
		orderedAt, err := parseTimestamp(rec[cols["Order Date and Time"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: order timestamp: %w", n+2, err)
		}
		deliveredAt, err := parseTimestamp(rec[cols["Delivery Date and Time"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: delivery timestamp: %w", n+2, err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rec[cols["Order Value"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: order value: %w", n+2, err)
		}

		orders = append(orders, models.Order{
			CustomerID:  rec[cols["Customer ID"]],
			OrderID:     rec[cols["Order ID"]],
			OrderedAt:   orderedAt,
			DeliveredAt: deliveredAt,
			OrderValue:  value,
			RawDiscount: rec[cols["Discounts and Offers"]],
			RawPayment:  rec[cols["Payment Method"]],
		})
		_ = bar.Add(1)
	}
	log.Infof("loaded %d orders from %s", len(orders), path)
	return orders, nil
}

func loadSQL(ctx context.Context, driver, dsn, table string) ([]models.Order, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("table invalide: %q", table)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	q := fmt.Sprintf("SELECT %s FROM %s", sqlColumns, table)
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var (
			o                    models.Order
			orderRaw, deliverRaw any
		)
		if err := rows.Scan(&o.CustomerID, &o.OrderID, &orderRaw, &deliverRaw,
			&o.OrderValue, &o.RawDiscount, &o.RawPayment); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		if o.OrderedAt, err = toTime(orderRaw); err != nil {
			return nil, fmt.Errorf("order timestamp: %w", err)
		}
		if o.DeliveredAt, err = toTime(deliverRaw); err != nil {
			return nil, fmt.Errorf("delivery timestamp: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	log.Infof("loaded %d orders from %s (%s)", len(orders), table, driver)
	return orders, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// toTime normalise la valeur horodatage renvoyée par le driver : time.Time
// pour mysql (parseTime=true), texte pour sqlite et postgres.
func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case []byte:
		return parseTimestamp(string(t))
	case string:
		return parseTimestamp(t)
	default:
		return time.Time{}, fmt.Errorf("unrecognized timestamp type %T", v)
	}
}
