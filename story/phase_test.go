package story

import "testing"

func TestSelectPhaseBoundaries(t *testing.T) {
	arc := testArc(10)
	tests := []struct {
		steps int
		want  Phase
	}{
		{0, PhaseSetup},
		{2, PhaseSetup}, // 0.2 is inclusive
		{3, PhaseRisingAction},
		{4, PhaseRisingAction}, // 0.4 is inclusive
		{5, PhaseComplication},
		{6, PhaseComplication},
		{8, PhaseClimax},
		{9, PhaseResolution},
		{10, PhaseResolution},
		{50, PhaseResolution},
		{-3, PhaseSetup},
	}
	for _, tt := range tests {
		if got := SelectPhase(arc, tt.steps).Phase; got != tt.want {
			t.Errorf("SelectPhase(%d) = %s, want %s", tt.steps, got, tt.want)
		}
	}
}

func TestSelectPhaseTotal(t *testing.T) {
	for est := MinEstimatedSteps; est <= MaxEstimatedSteps; est++ {
		arc := testArc(est)
		for steps := 0; steps <= 3*est; steps++ {
			p := SelectPhase(arc, steps)
			if phaseIndex(p.Phase) < 0 {
				t.Fatalf("est=%d steps=%d returned unknown phase %q", est, steps, p.Phase)
			}
		}
	}
}

func TestSelectPhaseZeroEstimate(t *testing.T) {
	arc := testArc(0)
	if got := SelectPhase(arc, 100).Phase; got != PhaseResolution {
		t.Fatalf("got %s", got)
	}
}

func TestProgress(t *testing.T) {
	arc := testArc(8)
	if got := Progress(arc, 4); got != 0.5 {
		t.Fatalf("Progress = %v", got)
	}
	if got := Progress(arc, 40); got != 1 {
		t.Fatalf("Progress capped = %v", got)
	}
}
