package visualizer

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"customer-analytics/pkg/models"
)

const histogramBins = 12

// RenderRFMHistograms trace la distribution de chaque feature RFM par
// cluster et retourne une seule image PNG à trois panneaux côte à côte
// (Recency, Frequency, Monetary). Le rendu n'est pas garanti identique au
// pixel d'une version à l'autre ; le contrat est le contenu, pas le style.
func RenderRFMHistograms(customers []models.RFMRecord, k int) ([]byte, error) {
	features := []struct {
		name  string
		value func(models.RFMRecord) float64
	}{
		{"Recency", func(r models.RFMRecord) float64 { return float64(r.Recency) }},
		{"Frequency", func(r models.RFMRecord) float64 { return float64(r.Frequency) }},
		{"Monetary", func(r models.RFMRecord) float64 { return r.Monetary }},
	}

	plots := make([]*plot.Plot, len(features))
	for i, feat := range features {
		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s by cluster", feat.name)
		p.X.Label.Text = feat.name
		p.Y.Label.Text = "customers"

		for c := 0; c < k; c++ {
			var vals plotter.Values
			for _, r := range customers {
				if r.Cluster == c {
					vals = append(vals, feat.value(r))
				}
			}
			if len(vals) == 0 {
				continue
			}
			h, err := plotter.NewHist(vals, histogramBins)
			if err != nil {
				return nil, fmt.Errorf("histogram %s cluster %d: %w", feat.name, c, err)
			}
			h.FillColor = withAlpha(plotutil.Color(c), 160)
			h.LineStyle.Color = plotutil.Color(c)
			p.Add(h)
		}
		plots[i] = p
	}

	img := vgimg.New(vg.Points(1080), vg.Points(360))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 1,
		Cols: len(plots),
		PadX: vg.Millimeter * 2,
		PadY: vg.Millimeter * 2,
	}
	for i, p := range plots {
		p.Draw(tiles.At(dc, i, 0))
	}

	var buf bytes.Buffer
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// withAlpha rend la couleur de remplissage translucide pour que les
// histogrammes superposés restent lisibles.
func withAlpha(c color.Color, a uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a}
}
