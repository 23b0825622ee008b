package ui

import (
	"fmt"
	"strings"
	"time"

	"vodbench/internal/progress"
)

func (m Model) viewHeader() string {
	done, failed, total := 0, 0, len(m.jobOrder)
	for _, id := range m.jobOrder {
		js := m.jobs[id]
		if js.done {
			done++
			if js.err != nil {
				failed++
			}
		}
	}
	title := m.styles.Title.Render("vodbench · " + truncate(m.title, 60))
	status := fmt.Sprintf("Configurations: %d/%d done", done, total)
	if failed > 0 {
		status += m.styles.Error.Render(fmt.Sprintf(" (%d failed)", failed))
	}
	sub := m.styles.Subtitle.Render(status + " • q: quit")
	return title + "\n" + sub
}

func (m Model) viewJobs() string {
	var b strings.Builder
	for _, id := range m.jobOrder {
		b.WriteString(m.viewJob(m.jobs[id]))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) stageStyle(s progress.Stage) func(...string) string {
	switch s {
	case progress.StageSegmenting:
		return m.styles.StageSeg.Render
	case progress.StageReference:
		return m.styles.StageRef.Render
	case progress.StageProbing:
		return m.styles.StageProbe.Render
	case progress.StageDeciding:
		return m.styles.StageDec.Render
	case progress.StageCompleted:
		return m.styles.Success.Render
	case progress.StageError:
		return m.styles.Error.Render
	}
	return m.styles.JobInfo.Render
}

func (m Model) viewJob(js *jobState) string {
	left := m.styles.JobTitle.Render(fmt.Sprintf("%-24s", js.id))
	line1 := left + "  " + m.stageStyle(js.stage)(string(js.stage))

	var right string
	switch {
	case js.done && js.err != nil:
		right = m.styles.Error.Render("✗ error")
	case js.done:
		right = m.styles.Success.Render(fmt.Sprintf("✓ mean %d kbps", js.meanKbps))
		if js.underTarget > 0 {
			right += m.styles.Warning.Render(fmt.Sprintf(" · %d under target", js.underTarget))
		}
		right += m.styles.Faint.Render(" · " + js.elapsed.Round(time.Second).String())
	case js.percent >= 0:
		right = fmt.Sprintf("%s %5.1f%%", js.bar.ViewAs(js.percent/100.0), js.percent)
	default:
		right = m.styles.Spinner.Render(js.spinner.View()) + " " + m.styles.Faint.Render("waiting")
	}

	return m.styles.Box.Render(line1 + "\n" + right + "\n" + m.styles.JobInfo.Render(js.detail()))
}

// detail renders the status line, with the candidate encode in flight when known.
func (js *jobState) detail() string {
	if js.done || js.stage != progress.StageProbing || js.segment < 0 {
		return js.status
	}
	parts := []string{fmt.Sprintf("seg %d", js.segment), fmt.Sprintf("%d kbps", js.kbps)}
	if js.encodePct >= 0 {
		parts = append(parts, fmt.Sprintf("encode %.0f%%", js.encodePct))
	}
	if js.speed != "" {
		parts = append(parts, js.speed)
	}
	if js.hasScore {
		parts = append(parts, fmt.Sprintf("last q=%.2f", js.score))
	}
	return strings.Join(parts, " · ")
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
