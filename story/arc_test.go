package story

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testArc(steps int) StoryArc {
	arc := StoryArc{EstimatedSteps: steps}
	for _, p := range Phases {
		arc.PlotPoints = append(arc.PlotPoints, StoryPhase{
			Phase:         p,
			Description:   string(p) + " description",
			EmotionalTone: string(p) + " tone",
		})
	}
	return arc
}

func TestNormalizeReordersAndClamps(t *testing.T) {
	in := testArc(20)
	in.PlotPoints[0], in.PlotPoints[4] = in.PlotPoints[4], in.PlotPoints[0]

	got, err := in.Normalize()
	if err != nil {
		t.Fatal(err)
	}
	want := testArc(MaxEstimatedSteps)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}

	low, err := testArc(3).Normalize()
	if err != nil {
		t.Fatal(err)
	}
	if low.EstimatedSteps != MinEstimatedSteps {
		t.Fatalf("EstimatedSteps = %d, want %d", low.EstimatedSteps, MinEstimatedSteps)
	}
}

func TestNormalizeRejectsBadShapes(t *testing.T) {
	short := testArc(10)
	short.PlotPoints = short.PlotPoints[:4]

	dup := testArc(10)
	dup.PlotPoints[1].Phase = PhaseSetup

	unknown := testArc(10)
	unknown.PlotPoints[2].Phase = "denouement"

	for name, arc := range map[string]StoryArc{"short": short, "duplicate": dup, "unknown": unknown} {
		if _, err := arc.Normalize(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	arc := testArc(10)
	token, err := arc.Encode()
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseArc(token)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(arc, got); diff != "" {
		t.Fatalf("round trip mismatch:\n%s", diff)
	}
	if _, err := ParseArc("not json"); err == nil {
		t.Fatal("expected decode error")
	}
}
