package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/deon-gracias/rag/internal/domain"
)

// printer renders transcripts and notices. It also serves as the
// workspace's notifier.
type printer struct {
	w  io.Writer
	mu sync.Mutex

	human  *color.Color
	ai     *color.Color
	system *color.Color
	ok     *color.Color
	bad    *color.Color
	dim    *color.Color
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:      w,
		human:  color.New(color.FgCyan, color.Bold),
		ai:     color.New(color.FgGreen, color.Bold),
		system: color.New(color.FgYellow),
		ok:     color.New(color.FgGreen),
		bad:    color.New(color.FgRed),
		dim:    color.New(color.Faint),
	}
}

func (p *printer) Success(title, detail string) { p.success(title, detail) }
func (p *printer) Error(title, detail string)   { p.notice(p.bad, "✗", title, detail) }

func (p *printer) success(title, detail string) { p.notice(p.ok, "✓", title, detail) }
func (p *printer) warn(msg string)              { p.notice(p.system, "!", msg, "") }
func (p *printer) failure(msg string)           { p.notice(p.bad, "✗", msg, "") }

func (p *printer) notice(c *color.Color, mark, title, detail string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if detail == "" {
		c.Fprintf(p.w, "%s %s\n", mark, title)
		return
	}
	c.Fprintf(p.w, "%s %s: ", mark, title)
	fmt.Fprintln(p.w, detail)
}

func (p *printer) notFound(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bad.Fprintln(p.w, "Session not found")
	p.dim.Fprintln(p.w, err.Error())
	p.dim.Fprintln(p.w, "Run `docchat sessions` to see the available sessions.")
}

func (p *printer) sessions(list []domain.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(list) == 0 {
		p.dim.Fprintln(p.w, "No sessions yet. Upload a document to start one.")
		return
	}
	for _, s := range list {
		fmt.Fprintf(p.w, "%4d  %s  ", s.ID, s.Name)
		p.dim.Fprintln(p.w, s.CreatedAt.Local().Format(time.DateTime))
	}
}

// entry prints one transcript line, numbered so /details can refer to it
func (p *printer) entry(n int, e domain.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Kind {
	case domain.KindHuman:
		p.human.Fprintf(p.w, "[%d] you", n)
		switch e.Status {
		case domain.StatusPending:
			p.dim.Fprint(p.w, " (sending)")
		case domain.StatusFailed:
			p.bad.Fprint(p.w, " (failed, /retry to resend)")
		}
	case domain.KindAI:
		p.ai.Fprintf(p.w, "[%d] assistant", n)
		if e.HasDetails() {
			p.dim.Fprint(p.w, " (/details)")
		}
	default:
		p.system.Fprintf(p.w, "[%d] system", n)
	}
	fmt.Fprintf(p.w, "\n%s\n\n", strings.TrimRight(e.Content, "\n"))
}

func (p *printer) transcript(entries []domain.Entry) {
	for i, e := range entries {
		p.entry(i+1, e)
	}
}

func (p *printer) details(e domain.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	u, r := e.Usage, e.Response
	rows := [][2]string{
		{"model", r.Model},
		{"role", r.Role},
		{"created", r.CreatedAt.Local().Format(time.RFC3339)},
		{"total duration", r.TotalDuration.String()},
		{"load duration", r.LoadDuration.String()},
		{"input tokens", fmt.Sprint(u.InputTokens)},
		{"output tokens", fmt.Sprint(u.OutputTokens)},
		{"total tokens", fmt.Sprint(u.TotalTokens)},
	}
	for _, row := range rows {
		p.dim.Fprintf(p.w, "%-15s ", row[0])
		fmt.Fprintln(p.w, row[1])
	}
}
