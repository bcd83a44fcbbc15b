// Command genfixtures writes the dashboard's seed state as static fixtures
// for frontend development and contract tests. It builds the real stores
// against a fixed clock so the output matches what the service serves on
// startup.
//
// Usage:
//
//	go run ./cmd/genfixtures -out data/fixtures
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/checklist"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/history"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/mapview"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/reports"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/safety"
	"github.com/jonboulle/clockwork"
)

var fixtureTime = time.Date(2024, time.July, 14, 12, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for fixtures")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	clock := clockwork.NewFakeClockAt(fixtureTime)
	logger := slog.New(slog.DiscardHandler)
	metrics := observability.NewMetricsForTesting()

	reportStore := reports.NewStore(clock, logger, metrics)
	checklists := checklist.NewStore(logger, metrics)
	historyLog := history.NewLog(clock, logger, metrics)
	directory := safety.NewDirectory()

	if err := writeJSON(filepath.Join(*out, "reports.json"), reportStore.List()); err != nil {
		return fmt.Errorf("writing reports fixture: %w", err)
	}

	data, err := historyLog.Export()
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(*out, "history.json"), data); err != nil {
		return fmt.Errorf("writing history fixture: %w", err)
	}

	if err := writeFile(filepath.Join(*out, "checklist.txt"), []byte(checklists.Export())); err != nil {
		return fmt.Errorf("writing checklist fixture: %w", err)
	}

	sorted := map[safety.Criterion][]domain.SafeLocation{}
	for _, c := range []safety.Criterion{safety.ByDistance, safety.ByType} {
		if err := directory.Sort(c); err != nil {
			return err
		}
		sorted[c] = directory.List()
	}
	if err := writeJSON(filepath.Join(*out, "safety.json"), sorted); err != nil {
		return fmt.Errorf("writing safety fixture: %w", err)
	}

	if err := writeJSON(filepath.Join(*out, "zones.json"), mapview.RiskZones()); err != nil {
		return fmt.Errorf("writing zones fixture: %w", err)
	}
	log.Printf("wrote fixtures to %s", *out)

	printStats(reportStore.List(), historyLog.Filter(domain.HistoryAll, ""), checklists.Stats(), sorted[safety.ByDistance])
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return os.WriteFile(path, data, 0o600)
}

func printStats(rs []domain.Report, items []domain.HistoryItem, stats map[domain.Phase]domain.CompletionStats, locs []domain.SafeLocation) {
	fmt.Println("\n=== Stats for updating test assertions ===")

	bySeverity := map[domain.Severity]int{}
	verified := 0
	for _, r := range rs {
		bySeverity[r.Severity]++
		if r.Verified {
			verified++
		}
	}
	fmt.Printf("Reports: %d (verified=%d)\n", len(rs), verified)
	fmt.Printf("By severity: low=%d, medium=%d, high=%d, critical=%d\n",
		bySeverity[domain.SeverityLow], bySeverity[domain.SeverityMedium],
		bySeverity[domain.SeverityHigh], bySeverity[domain.SeverityCritical])

	byType := map[domain.HistoryType]int{}
	for _, item := range items {
		byType[item.Type]++
	}
	fmt.Printf("History: %d (search=%d, location=%d, report=%d, view=%d)\n", len(items),
		byType[domain.HistorySearch], byType[domain.HistoryLocation],
		byType[domain.HistoryReport], byType[domain.HistoryView])

	for _, phase := range domain.Phases {
		s := stats[phase]
		fmt.Printf("Checklist %s: %d/%d\n", phase, s.Completed, s.Total)
	}

	fmt.Printf("Safety locations by distance:")
	for _, l := range locs {
		fmt.Printf(" %s(%.1fkm)", l.ID, l.Distance)
	}
	fmt.Println()

	zones := mapview.RiskZones()
	sort.Slice(zones, func(i, j int) bool { return zones[i].Layer < zones[j].Layer })
	fmt.Printf("Risk zones:")
	for _, z := range zones {
		fmt.Printf(" %s/%s(%s)", z.Layer, z.Shape, z.Risk)
	}
	fmt.Println()
}
