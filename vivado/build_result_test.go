package vivado

import (
	"strings"
	"testing"
)

func TestNewBuildResultIsSuccessful(t *testing.T) {
	result := NewBuildResult("apa")
	if !result.Success {
		t.Fatal("expected a fresh build result to be successful")
	}
	if result.SizeSummary() != "" {
		t.Fatal("expected no size summary without utilization figures")
	}
}

func TestSizeSummaryPrefersImplementation(t *testing.T) {
	result := NewBuildResult("apa")
	result.SynthesisSize = map[string]int{"LUT": 3}
	result.ImplementationSize = map[string]int{"LUT": 2, "FF": 4}

	summary := result.SizeSummary()
	if !strings.HasPrefix(summary, "Implementation size for apa:") {
		t.Fatalf("unexpected summary: %q", summary)
	}
	if !strings.Contains(summary, "FF: 4") || !strings.Contains(summary, "LUT: 2") {
		t.Fatalf("unexpected summary: %q", summary)
	}
}

func TestSizeSummaryFallsBackToSynthesis(t *testing.T) {
	result := NewBuildResult("apa")
	result.SynthesisSize = map[string]int{"LUT": 3}

	summary := result.SizeSummary()
	if !strings.HasPrefix(summary, "Synthesis size for apa:") {
		t.Fatalf("unexpected summary: %q", summary)
	}
}
