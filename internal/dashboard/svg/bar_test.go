package svg

import (
	"strings"
	"testing"
)

func TestBarsProducesSVG(t *testing.T) {
	html, err := Bars(420, 220, []float64{3, 7}, []string{"Chika", "Not Set"}, BarOpts{
		Title:       "Customer Service Sheets",
		Description: "Sheets by digital marketer",
		SeriesLabel: "Sheets",
	})
	if err != nil {
		t.Fatalf("bars renderer error: %v", err)
	}
	output := string(html)
	if !strings.HasPrefix(output, "<svg") {
		t.Fatalf("expected svg output, got %s", output)
	}
	if strings.Count(output, "<rect") != 2 {
		t.Fatalf("expected two bars in svg")
	}
	if !strings.Contains(output, "Sheets Chika: 3") {
		t.Fatalf("expected bar aria label")
	}
}

func TestBarsEscapesLabels(t *testing.T) {
	html, err := Bars(0, 0, []float64{1}, []string{"<script>alert(1)</script>"}, BarOpts{Title: "x"})
	if err != nil {
		t.Fatalf("bars renderer error: %v", err)
	}
	if strings.Contains(string(html), "<script>") {
		t.Fatalf("label was not escaped")
	}
}

func TestBarsEmpty(t *testing.T) {
	html, err := Bars(0, 0, nil, nil, BarOpts{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(html), "<rect") {
		t.Fatalf("expected no bars")
	}
}

func TestBarsRejectsMismatch(t *testing.T) {
	if _, err := Bars(0, 0, []float64{1, 2}, []string{"a"}, BarOpts{}); err == nil {
		t.Fatalf("expected mismatch error")
	}
}
