package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/orbitshield/orbitshield/internal/catalog"
	"github.com/orbitshield/orbitshield/internal/conjunction"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	path := "scenario.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	store := catalog.NewStore(500)
	scn, err := catalog.LoadScenario(path, store, logger)
	if err != nil {
		fmt.Println("ERROR loading scenario:", err)
		os.Exit(1)
	}
	fmt.Printf("Scenario %q: %d satellites, %d debris objects\n",
		scn.Name, len(scn.Satellites), len(scn.Debris))

	engine := conjunction.NewEngine(conjunction.Config{}, store, logger)

	start := time.Now()
	engine.ScanOnce(context.Background())
	snap := engine.Snapshot()
	if snap == nil {
		fmt.Println("ERROR: scan produced no snapshot")
		os.Exit(1)
	}
	fmt.Printf("Scan took %v, evaluated %d pairs\n", time.Since(start), snap.PairsEvaluated)

	if len(snap.Events) == 0 {
		fmt.Println("No conjunction events above threshold")
		return
	}

	fmt.Printf("\n%d conjunction events (highest risk first):\n", len(snap.Events))
	for i, ev := range snap.Events {
		fmt.Printf("  %d. %s vs %s: %s (level %d, score %.3f)\n",
			i+1, ev.SatelliteName, ev.DebrisName, ev.RiskLabel, ev.RiskLevel, ev.RiskScore)
		fmt.Printf("     distance=%.2fkm minApproach=%.2fkm tca=%.0fs relV=%.2fkm/s pColl=%.4f\n",
			ev.DistanceKm, ev.MinimumDistanceKm, ev.TimeToClosestApproachSec, ev.RelativeVelocityKmps, ev.CollisionProbability)
		fmt.Printf("     action: %s\n", ev.RecommendedAction)
	}
}
