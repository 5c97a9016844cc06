package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/op/go-logging"

	"customer-analytics/pkg/calculator"
	"customer-analytics/pkg/config"
	"customer-analytics/pkg/models"
	"customer-analytics/pkg/visualizer"
)

var log = logging.MustGetLogger("log")

// Server est la coquille transport du pipeline : il traduit les requêtes
// HTTP en appels purs sur le Dataset immuable et les erreurs du cœur en
// codes de réponse. RFM, segmentation et CLV sont recalculés à chaque
// requête concernée ; aucun cache, aucun état mutable partagé, donc des
// requêtes concurrentes indépendantes ne peuvent pas se marcher dessus.
type Server struct {
	ds  *models.Dataset
	cfg *config.Config
	mux *http.ServeMux
}

func New(ds *models.Dataset, cfg *config.Config) *Server {
	s := &Server{ds: ds, cfg: cfg, mux: http.NewServeMux()}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/customer_metrics/", s.handleCustomerMetrics)
	s.mux.HandleFunc("/api/rfm_segmentation", s.handleRFMSegmentation)
	s.mux.HandleFunc("/api/segmentation_image", s.handleSegmentationImage)
	s.mux.HandleFunc("/api/clv", s.handleCLV)
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) ListenAndServe() error {
	log.Infof("listening on %s", s.cfg.Address)
	return http.ListenAndServe(s.cfg.Address, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleCustomerMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/customer_metrics/")
	id = strings.TrimSuffix(id, "/")
	if id == "" {
		http.Error(w, "missing customer id", http.StatusBadRequest)
		return
	}
	// Un identifiant ne contient jamais de segment de chemin.
	if strings.Contains(id, "/") {
		http.Error(w, "invalid customer id", http.StatusBadRequest)
		return
	}

	metrics, err := calculator.CustomerMetrics(s.ds, id, time.Now())
	if errors.Is(err, calculator.ErrCustomerNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Customer ID not found"})
		return
	}
	if err != nil {
		s.internalError(w, "customer metrics", err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleRFMSegmentation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	seg, err := s.segment()
	if err != nil {
		s.internalError(w, "rfm segmentation", err)
		return
	}
	writeJSON(w, http.StatusOK, seg)
}

func (s *Server) handleSegmentationImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	seg, err := s.segment()
	if err != nil {
		s.internalError(w, "segmentation image", err)
		return
	}
	img, err := visualizer.RenderRFMHistograms(seg.Customers, s.cfg.Clusters)
	if err != nil {
		s.internalError(w, "segmentation image", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(img)
}

func (s *Server) handleCLV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	seg, err := s.segment()
	if err != nil {
		s.internalError(w, "clv", err)
		return
	}
	writeJSON(w, http.StatusOK, calculator.EstimateCLV(seg.Customers, s.cfg.CLVLifetimeMonths))
}

// segment relance le pipeline RFM + segmentation depuis le Dataset. Pas de
// cache entre deux requêtes : chaque exécution possède ses tables.
func (s *Server) segment() (*models.SegmentationResult, error) {
	rfm := calculator.ComputeRFM(s.ds)
	return calculator.Segment(rfm, s.cfg.Clusters, s.cfg.Seed)
}

// internalError journalise la cause réelle côté serveur et ne renvoie au
// client qu'un échec générique, sans détail interne.
func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	log.Errorf("%s error: %v", op, err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode response: %v", err)
	}
}
