package visualizer

import (
	"bytes"
	"testing"

	"customer-analytics/pkg/models"
)

func clustered() []models.RFMRecord {
	return []models.RFMRecord{
		{CustomerID: "A1", Recency: 2, Frequency: 12, Monetary: 2400, Cluster: 0},
		{CustomerID: "A2", Recency: 4, Frequency: 11, Monetary: 2200, Cluster: 0},
		{CustomerID: "B1", Recency: 45, Frequency: 4, Monetary: 600, Cluster: 1},
		{CustomerID: "B2", Recency: 50, Frequency: 3, Monetary: 500, Cluster: 1},
		{CustomerID: "C1", Recency: 180, Frequency: 1, Monetary: 60, Cluster: 2},
	}
}

func TestRenderRFMHistograms_PNG(t *testing.T) {
	img, err := RenderRFMHistograms(clustered(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(img, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("output does not start with a PNG signature (%d bytes)", len(img))
	}
}

func TestRenderRFMHistograms_EmptyClusterSkipped(t *testing.T) {
	// k=3 mais seulement deux clusters peuplés : le rendu doit passer.
	records := clustered()[:4]
	img, err := RenderRFMHistograms(records, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(img) == 0 {
		t.Fatal("empty image")
	}
}

func TestRenderRFMHistograms_Deterministic(t *testing.T) {
	a, err := RenderRFMHistograms(clustered(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := RenderRFMHistograms(clustered(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("two renders of the same input differ")
	}
}
