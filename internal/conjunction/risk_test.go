package conjunction

import (
	"testing"

	"github.com/orbitshield/orbitshield/internal/catalog"
)

func TestClassifyDistance(t *testing.T) {
	tests := []struct {
		name       string
		distanceKm float64
		want       Level
	}{
		{"well clear", 120, LevelSafe},
		{"just above safe boundary", 50.001, LevelSafe},
		{"caution band", 35, LevelCaution},
		{"warning band", 12, LevelWarning},
		{"boundary is critical", 5, LevelCritical},
		{"very close", 0.8, LevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyDistance(tt.distanceKm); got != tt.want {
				t.Errorf("ClassifyDistance(%v) = %v, want %v", tt.distanceKm, got, tt.want)
			}
		})
	}
}

func TestClassify_Escalation(t *testing.T) {
	// Fast head-on geometry bumps the level by one.
	if got := Classify(12, 11, 160); got != LevelCritical {
		t.Errorf("fast head-on at 12 km = %v, want %v", got, LevelCritical)
	}
	// Slow or co-moving pairs keep the distance level.
	if got := Classify(12, 11, 30); got != LevelWarning {
		t.Errorf("fast but co-moving = %v, want %v", got, LevelWarning)
	}
	if got := Classify(12, 4, 160); got != LevelWarning {
		t.Errorf("head-on but slow = %v, want %v", got, LevelWarning)
	}
	// Critical does not escalate past critical.
	if got := Classify(2, 11, 160); got != LevelCritical {
		t.Errorf("escalated critical = %v, want %v", got, LevelCritical)
	}
}

func TestLevelMappings(t *testing.T) {
	if LevelCritical.Label() != "High Risk" || LevelCritical.Color() != "red" {
		t.Errorf("critical mapping = %q/%q", LevelCritical.Label(), LevelCritical.Color())
	}
	if LevelSafe.RecommendedAction() != "Continue monitoring" {
		t.Errorf("safe action = %q", LevelSafe.RecommendedAction())
	}
	if LevelWarning.Severity() != catalog.SeverityMedium {
		t.Errorf("warning severity = %q", LevelWarning.Severity())
	}
	if LevelCritical.Severity() != catalog.SeverityHigh {
		t.Errorf("critical severity = %q", LevelCritical.Severity())
	}
	if LevelCaution.Severity() != catalog.SeverityLow {
		t.Errorf("caution severity = %q", LevelCaution.Severity())
	}
}

func TestScore_Bounds(t *testing.T) {
	worst := Score(Features{
		DistanceKm:           0.001,
		RelativeVelocityKmps: 15,
		ApproachAngleDeg:     180,
		AltitudeDiffKm:       0,
		TCASeconds:           0,
		DistanceAtTCAKm:      0.001,
	})
	if worst < 0 || worst > 1 {
		t.Fatalf("worst-case score %v outside [0, 1]", worst)
	}
	if worst < 0.95 {
		t.Errorf("worst-case score %v, want near 1", worst)
	}

	benign := Score(Features{
		DistanceKm:           5000,
		RelativeVelocityKmps: 0.1,
		ApproachAngleDeg:     0,
		AltitudeDiffKm:       2000,
		TCASeconds:           1e9,
		DistanceAtTCAKm:      5000,
	})
	if benign < 0 || benign > 0.1 {
		t.Errorf("benign score %v, want near 0", benign)
	}
}

func TestScore_CloserIsRiskier(t *testing.T) {
	base := Features{
		RelativeVelocityKmps: 7.5,
		ApproachAngleDeg:     90,
		AltitudeDiffKm:       10,
		TCASeconds:           600,
	}

	var prev float64 = -1
	for _, d := range []float64{100, 40, 15, 4} {
		f := base
		f.DistanceKm = d
		f.DistanceAtTCAKm = d
		score := Score(f)
		if score <= prev {
			t.Errorf("score at %v km = %v, want above score at larger distance (%v)", d, score, prev)
		}
		prev = score
	}
}

func TestScore_ImminentTCAAmplifies(t *testing.T) {
	near := Features{DistanceKm: 25, DistanceAtTCAKm: 3, TCASeconds: 600, RelativeVelocityKmps: 7.5, ApproachAngleDeg: 90, AltitudeDiffKm: 5}
	far := near
	far.TCASeconds = 100 * 3600 // beyond the 72 h amplification horizon

	if Score(near) <= Score(far) {
		t.Errorf("imminent approach score %v, want above distant approach %v", Score(near), Score(far))
	}
}

func TestCollisionProbability(t *testing.T) {
	// Inside the combined hard-body radius the probability saturates.
	if got := CollisionProbability(0.001, 10, 5, 1); got != 0.99 {
		t.Errorf("contact probability = %v, want 0.99", got)
	}

	// Decays with distance.
	near := CollisionProbability(1, 10, 5, 1)
	farther := CollisionProbability(10, 10, 5, 1)
	if near <= farther {
		t.Errorf("probability at 1 km (%v) should exceed probability at 10 km (%v)", near, farther)
	}

	// Never exceeds the cap or drops below zero.
	for _, d := range []float64{0, 0.5, 5, 500} {
		p := CollisionProbability(d, 20, 5, 1)
		if p < 0 || p > 0.99 {
			t.Errorf("probability at %v km = %v outside [0, 0.99]", d, p)
		}
	}
}
