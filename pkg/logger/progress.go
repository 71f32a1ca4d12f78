package logger

import (
	"fmt"
	"strings"
)

// ProgressBar redraws a single console line as work completes.
type ProgressBar struct {
	total   int
	current int
	width   int
	message string
}

// NewProgressBar creates a bar for total steps
func NewProgressBar(total int, message string) *ProgressBar {
	return &ProgressBar{
		total:   max(total, 1),
		width:   40,
		message: message,
	}
}

// Increment advances the bar by one step
func (p *ProgressBar) Increment() {
	p.Update(p.current + 1)
}

// Update sets the completed step count, clamped to the total
func (p *ProgressBar) Update(current int) {
	p.current = min(max(current, 0), p.total)
	p.draw("")
}

// Finish fills the bar and ends the line
func (p *ProgressBar) Finish() {
	p.current = p.total
	p.draw("\n")
}

func (p *ProgressBar) render(noColor bool) string {
	percent := float64(p.current) / float64(p.total)
	filled := p.current * p.width / p.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)
	if noColor {
		return fmt.Sprintf("\r%s: [%s] %3.0f%%", p.message, bar, percent*100)
	}
	return fmt.Sprintf("\r%s: %s %3.0f%%", p.message, green.Sprint(bar), percent*100)
}

func (p *ProgressBar) draw(end string) {
	o := console()
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprint(o.writer, p.render(o.noColor)+end)
}
