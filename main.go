package main

import (
	"context"
	"flag"
	"os"

	"github.com/op/go-logging"

	"customer-analytics/pkg/config"
	"customer-analytics/pkg/database"
	"customer-analytics/pkg/features"
	"customer-analytics/pkg/models"
	"customer-analytics/pkg/server"
)

var log = logging.MustGetLogger("log")

// InitLogger Receives the log level to be set in go-logging as a string. This method
// parses the string and set the level to the logger. If the level string is not
// valid an error is returned
func InitLogger(logLevel string) error {
	baseBackend := logging.NewLogBackend(os.Stdout, "", 0)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} %{level:.5s}     %{message}`,
	)
	backendFormatter := logging.NewBackendFormatter(baseBackend, format)

	backendLeveled := logging.AddModuleLevel(backendFormatter)
	logLevelCode, err := logging.LogLevel(logLevel)
	if err != nil {
		return err
	}
	backendLeveled.SetLevel(logLevelCode, "")

	// Set the backends to be used.
	logging.SetBackend(backendLeveled)
	return nil
}

func main() {
	configPath := flag.String("config", "", "Chemin du fichier de configuration (défaut: config.json)")
	flag.Parse()

	cfg, err := config.InitConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %s", err)
	}

	if err := InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("%s", err)
	}

	log.Debugf("Config: %+v", cfg)

	// Chargement unique du jeu de données : toute violation de schéma est
	// fatale ici, le processus ne sert aucune requête sans données valides.
	ctx := context.Background()
	orders, err := database.LoadOrders(ctx, cfg)
	if err != nil {
		log.Fatalf("load dataset: %v", err)
	}
	if len(orders) == 0 {
		log.Fatalf("load dataset: no orders in %s", cfg.Source)
	}

	// Dérivation des features puis construction du contexte immuable,
	// lecture seule pour tout le reste de la vie du processus.
	ds := models.NewDataset(features.Derive(orders))
	log.Infof("dataset ready: %d orders, %d customers, max order date %s",
		len(ds.Orders), len(ds.Customers()), ds.MaxOrderedAt().Format("2006-01-02"))

	srv := server.New(ds, cfg)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
