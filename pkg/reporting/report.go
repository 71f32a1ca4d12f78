package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/rally"
)

// reasons lists rally end reasons in report order.
var reasons = []rally.Reason{
	rally.Ace, rally.Kill, rally.BlockKill, rally.Landed,
	rally.Out, rally.ErrorOut, rally.ErrorNet, rally.FourTouches,
}

// MatchReport summarizes a match from its rally events.
type MatchReport struct {
	Metadata       ReportMetadata `json:"metadata"`
	Home           TeamStats      `json:"home"`
	Away           TeamStats      `json:"away"`
	Rallies        []RallySummary `json:"rallies"`
	Faults         int            `json:"faults"`
	AverageTouches float64        `json:"averageTouches"`
	InSystemRate   float64        `json:"inSystemRate"`
}

// ReportMetadata identifies the match.
type ReportMetadata struct {
	MatchID     string    `json:"matchId"`
	Scenario    string    `json:"scenario,omitempty"`
	Seed        int64     `json:"seed"`
	GeneratedAt time.Time `json:"generatedAt"`
	SimSeconds  float64   `json:"simSeconds"`
}

// TeamStats are one side's totals.
type TeamStats struct {
	Points         int                  `json:"points"`
	PointsByReason map[rally.Reason]int `json:"pointsByReason"`
	Serves         int                  `json:"serves"`
	Touches        int                  `json:"touches"`
	Passes         int                  `json:"passes"`
	InSystemPasses int                  `json:"inSystemPasses"`
}

// RallySummary is one finished rally.
type RallySummary struct {
	Number   int           `json:"number"`
	Server   geometry.Side `json:"server"`
	Winner   geometry.Side `json:"winner,omitempty"`
	Reason   rally.Reason  `json:"reason"`
	Touches  int           `json:"touches"`
	Duration float64       `json:"duration"`
	Score    string        `json:"score"`
}

// ReportConfig configures where reports are written.
type ReportConfig struct {
	OutputDir string
	Format    string // "json", "markdown"
}

// BuildReport folds events into a report. A rally that has not ended is left
// out.
func BuildReport(matchID string, seed int64, events []rally.Event) *MatchReport {
	r := &MatchReport{
		Metadata: ReportMetadata{MatchID: matchID, Seed: seed, GeneratedAt: time.Now().UTC()},
		Home:     TeamStats{PointsByReason: make(map[rally.Reason]int)},
		Away:     TeamStats{PointsByReason: make(map[rally.Reason]int)},
		Rallies:  make([]RallySummary, 0),
	}

	var current *RallySummary
	start := 0.0
	totalTouches, passes, inSystem := 0, 0, 0

	for _, e := range events {
		r.Metadata.SimSeconds = e.Time
		switch e.Type {
		case rally.StartRally:
			current = &RallySummary{Number: len(r.Rallies) + 1, Server: e.Side}
			start = e.Time
		case rally.ServeContact:
			if current == nil {
				current = &RallySummary{Number: len(r.Rallies) + 1, Server: e.Side}
				start = e.Time
			}
			current.Touches++
			r.team(e.Side).Serves++
			r.team(e.Side).Touches++
		case rally.TeamTouchedBall:
			if current == nil {
				continue
			}
			current.Touches++
			t := r.team(e.Side)
			t.Touches++
			if e.Contact == physics.Pass || e.Contact == physics.Dig {
				t.Passes++
				passes++
				if e.Quality.InSystem() {
					t.InSystemPasses++
					inSystem++
				}
			}
		case rally.BallDeadEvent:
			if current == nil {
				current = &RallySummary{Number: len(r.Rallies) + 1}
			}
			current.Reason = e.Reason
			current.Duration = e.Time - start
			if e.Side.Valid() {
				current.Winner = e.Side
				t := r.team(e.Side)
				t.Points++
				t.PointsByReason[e.Reason]++
			} else {
				r.Faults++
			}
			current.Score = fmt.Sprintf("%d-%d", r.Home.Points, r.Away.Points)
			totalTouches += current.Touches
			r.Rallies = append(r.Rallies, *current)
			current = nil
		}
	}

	if len(r.Rallies) > 0 {
		r.AverageTouches = float64(totalTouches) / float64(len(r.Rallies))
	}
	if passes > 0 {
		r.InSystemRate = float64(inSystem) / float64(passes)
	}
	return r
}

func (r *MatchReport) team(side geometry.Side) *TeamStats {
	if side == geometry.Away {
		return &r.Away
	}
	return &r.Home
}

// Winner is the side with more points, or "" on a tie.
func (r *MatchReport) Winner() geometry.Side {
	switch {
	case r.Home.Points > r.Away.Points:
		return geometry.Home
	case r.Away.Points > r.Home.Points:
		return geometry.Away
	}
	return ""
}

// Highlights returns the headline figures in display order.
func (r *MatchReport) Highlights() *orderedmap.OrderedMap[string, any] {
	h := orderedmap.NewOrderedMap[string, any]()
	h.Set("score", fmt.Sprintf("%d-%d", r.Home.Points, r.Away.Points))
	if w := r.Winner(); w != "" {
		h.Set("winner", string(w))
	}
	h.Set("rallies", len(r.Rallies))
	h.Set("average touches", fmt.Sprintf("%.2f", r.AverageTouches))
	h.Set("in-system rate", fmt.Sprintf("%.1f%%", r.InSystemRate*100))
	if r.Faults > 0 {
		h.Set("engine faults", r.Faults)
	}
	return h
}

// SaveReport writes r under cfg.OutputDir and returns the file path.
func SaveReport(r *MatchReport, cfg ReportConfig) (string, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := r.Metadata.GeneratedAt.Format("20060102_150405")
	filename := fmt.Sprintf("match_%s_%s", short(r.Metadata.MatchID), timestamp)

	var path string
	var err error
	switch cfg.Format {
	case "json":
		path = filepath.Join(cfg.OutputDir, filename+".json")
		err = saveJSON(r, path)
	case "markdown":
		path = filepath.Join(cfg.OutputDir, filename+".md")
		err = os.WriteFile(path, []byte(r.Markdown()), 0644)
	default:
		return "", fmt.Errorf("unsupported format: %s", cfg.Format)
	}
	if err != nil {
		return "", err
	}

	logger.Successf("Report saved to: %s", path)
	return path, nil
}

func saveJSON(r *MatchReport, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Markdown renders the report.
func (r *MatchReport) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# Match Report\n\n")
	sb.WriteString(fmt.Sprintf("**Match ID:** %s\n", r.Metadata.MatchID))
	if r.Metadata.Scenario != "" {
		sb.WriteString(fmt.Sprintf("**Scenario:** %s\n", r.Metadata.Scenario))
	}
	sb.WriteString(fmt.Sprintf("**Seed:** %d\n", r.Metadata.Seed))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n", r.Metadata.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("**Simulated time:** %.1fs\n\n", r.Metadata.SimSeconds))

	sb.WriteString("## Summary\n\n")
	highlights := r.Highlights()
	for _, key := range highlights.Keys() {
		v, _ := highlights.Get(key)
		sb.WriteString(fmt.Sprintf("- **%s:** %v\n", key, v))
	}
	sb.WriteString("\n")

	sb.WriteString("## Points by Reason\n\n")
	sb.WriteString("| Reason | HOME | AWAY |\n|---|---|---|\n")
	for _, reason := range reasons {
		h, a := r.Home.PointsByReason[reason], r.Away.PointsByReason[reason]
		if h == 0 && a == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %d |\n", reason, h, a))
	}
	sb.WriteString("\n")

	sb.WriteString("## Teams\n\n")
	for _, side := range []geometry.Side{geometry.Home, geometry.Away} {
		t := r.team(side)
		sb.WriteString(fmt.Sprintf("### %s\n\n", side))
		sb.WriteString(fmt.Sprintf("- **Points:** %d\n", t.Points))
		sb.WriteString(fmt.Sprintf("- **Serves:** %d\n", t.Serves))
		sb.WriteString(fmt.Sprintf("- **Touches:** %d\n", t.Touches))
		sb.WriteString(fmt.Sprintf("- **Passes in system:** %d/%d\n\n", t.InSystemPasses, t.Passes))
	}

	if len(r.Rallies) > 0 {
		sb.WriteString("## Rallies\n\n")
		sb.WriteString("| # | Server | Winner | Reason | Touches | Duration | Score |\n|---|---|---|---|---|---|---|\n")
		for _, ra := range r.Rallies {
			winner := string(ra.Winner)
			if winner == "" {
				winner = "-"
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %d | %.1fs | %s |\n",
				ra.Number, ra.Server, winner, ra.Reason, ra.Touches, ra.Duration, ra.Score))
		}
	}

	return sb.String()
}
