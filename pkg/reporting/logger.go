package reporting

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/rally"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// RallyLogger prints match events as they happen and keeps them for the
// match report.
type RallyLogger struct {
	matchID   string
	startTime time.Time
	out       io.Writer
	verbose   bool
	events    []MatchEvent
	mu        sync.RWMutex
}

// MatchEvent is one logged engine event with the score after it.
type MatchEvent struct {
	Tick      uint64      `json:"tick"`
	Severity  string      `json:"severity"`
	Message   string      `json:"message"`
	Event     rally.Event `json:"event"`
	HomeScore int         `json:"homeScore"`
	AwayScore int         `json:"awayScore"`
}

// Severity constants
const (
	SeverityDebug   = "debug"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// maxEvents bounds the event store.
const maxEvents = 100000

// Color definitions
var (
	colorDebug   = color.New(color.FgHiBlack)
	colorInfo    = color.New(color.FgCyan)
	colorWarning = color.New(color.FgYellow)
	colorError   = color.New(color.FgRed)
	colorHome    = color.New(color.FgBlue, color.Bold)
	colorAway    = color.New(color.FgRed, color.Bold)
	colorSuccess = color.New(color.FgGreen)
)

// LoggerOption customizes a RallyLogger.
type LoggerOption func(*RallyLogger)

// WithWriter sends the colored event lines to w instead of stdout.
func WithWriter(w io.Writer) LoggerOption {
	return func(rl *RallyLogger) { rl.out = w }
}

// WithVerbose also prints every contact and net crossing.
func WithVerbose(verbose bool) LoggerOption {
	return func(rl *RallyLogger) { rl.verbose = verbose }
}

// NewRallyLogger creates a logger for one match. An empty id gets a random
// one.
func NewRallyLogger(matchID string, opts ...LoggerOption) *RallyLogger {
	if matchID == "" {
		matchID = uuid.NewString()
	}
	rl := &RallyLogger{
		matchID:   matchID,
		startTime: time.Now(),
		out:       os.Stdout,
		events:    make([]MatchEvent, 0),
	}
	for _, opt := range opts {
		opt(rl)
	}
	rl.printLine(SeverityInfo, "Match Started", fmt.Sprintf("ID: %s", short(matchID)))
	return rl
}

// MatchID returns the match id.
func (rl *RallyLogger) MatchID() string {
	return rl.matchID
}

// Observe records the events one tick produced. ws is the world after the
// tick.
func (rl *RallyLogger) Observe(ws world.WorldState, events []rally.Event) {
	for _, e := range events {
		severity, title, message := describe(e)
		rl.logEvent(MatchEvent{
			Tick:      ws.Tick,
			Severity:  severity,
			Message:   message,
			Event:     e,
			HomeScore: ws.Rally.HomeScore,
			AwayScore: ws.Rally.AwayScore,
		})
		if severity == SeverityDebug && !rl.verbose {
			continue
		}
		if e.Type == rally.BallDeadEvent && e.Side.Valid() {
			message = fmt.Sprintf("%s | %s", message, scoreLine(ws.Rally.HomeScore, ws.Rally.AwayScore))
		}
		rl.printLine(severity, title, message)
	}
}

// LogError records an engine error.
func (rl *RallyLogger) LogError(message string, err error) {
	rl.logEvent(MatchEvent{Severity: SeverityError, Message: fmt.Sprintf("%s: %v", message, err)})
	logger.Errorf("%s: %v", message, err)
}

func describe(e rally.Event) (severity, title, message string) {
	switch e.Type {
	case rally.StartRally:
		return SeverityInfo, "Rally", fmt.Sprintf("%s to serve", teamColor(e.Side).Sprint(e.Side))
	case rally.ServeContact:
		return SeverityDebug, "Serve", fmt.Sprintf("%s serves (%s)", e.PlayerID, e.Quality)
	case rally.TeamTouchedBall:
		return SeverityDebug, "Touch", fmt.Sprintf("%s %s by %s (%s)", teamColor(e.Side).Sprint(e.Side), e.Contact, e.PlayerID, e.Quality)
	case rally.BallCrossedNet:
		return SeverityDebug, "Net", fmt.Sprintf("ball crosses from %s", teamColor(e.Side).Sprint(e.Side))
	case rally.BallDeadEvent:
		if e.Reason == rally.EngineFault {
			return SeverityError, "Fault", "rally stopped by an engine fault"
		}
		return SeverityInfo, "Point", fmt.Sprintf("%s wins the rally (%s)", teamColor(e.Side).Sprint(e.Side), e.Reason)
	}
	return SeverityDebug, string(e.Type), ""
}

// Events returns a copy of the logged events.
func (rl *RallyLogger) Events() []MatchEvent {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	events := make([]MatchEvent, len(rl.events))
	copy(events, rl.events)
	return events
}

// RallyEvents returns just the engine events, in order.
func (rl *RallyLogger) RallyEvents() []rally.Event {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	out := make([]rally.Event, 0, len(rl.events))
	for _, e := range rl.events {
		if e.Event.Type != "" {
			out = append(out, e.Event)
		}
	}
	return out
}

func (rl *RallyLogger) logEvent(event MatchEvent) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.events = append(rl.events, event)

	if len(rl.events) > maxEvents {
		rl.events = rl.events[len(rl.events)-maxEvents:]
	}
}

func (rl *RallyLogger) printLine(severity, title, message string) {
	timestamp := time.Now().Format("15:04:05.000")

	var severityColor *color.Color
	switch severity {
	case SeverityDebug:
		severityColor = colorDebug
	case SeverityWarning:
		severityColor = colorWarning
	case SeverityError:
		severityColor = colorError
	default:
		severityColor = colorInfo
	}

	_, _ = fmt.Fprintf(rl.out, "[%s] %s %-6s | %s\n",
		timestamp,
		severityColor.Sprint(fmt.Sprintf("%-8s", severity)),
		title,
		message)
}

func teamColor(side geometry.Side) *color.Color {
	switch side {
	case geometry.Home:
		return colorHome
	case geometry.Away:
		return colorAway
	}
	return colorInfo
}

func scoreLine(home, away int) string {
	return fmt.Sprintf("%s %d - %d %s", colorHome.Sprint(geometry.Home), home, away, colorAway.Sprint(geometry.Away))
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// PrintSummary prints the report's headline figures.
func (rl *RallyLogger) PrintSummary(report *MatchReport) {
	colorSuccess.Fprintln(rl.out, "\n==================== MATCH SUMMARY ====================")
	_, _ = fmt.Fprintf(rl.out, "Match %s | %s\n", short(report.Metadata.MatchID), scoreLine(report.Home.Points, report.Away.Points))
	highlights := report.Highlights()
	for _, key := range highlights.Keys() {
		v, _ := highlights.Get(key)
		_, _ = fmt.Fprintf(rl.out, "   %-18s: %v\n", key, v)
	}
	colorSuccess.Fprintln(rl.out, "=======================================================")
}
