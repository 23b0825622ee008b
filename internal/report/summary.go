package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"vodbench/internal/util/format"
)

// plain never emits escape codes, whatever stdout is.
var plain = lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.Ascii))

// Summary renders one line per configuration: mean bitrate, estimated size,
// segments under target and probe count. It is styled for the terminal.
func Summary(r Report) string {
	return renderSummary(r, lipgloss.DefaultRenderer())
}

// PlainSummary is Summary without styling, for files.
func PlainSummary(r Report) string {
	return renderSummary(r, plain)
}

func renderSummary(r Report, re *lipgloss.Renderer) string {
	headerStyle := re.NewStyle().Bold(true)
	failStyle := re.NewStyle().Foreground(lipgloss.Color("9"))

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf(
		"Target VMAF %.1f, %d segments, %s search", r.TargetQuality, len(r.Segments), r.Mode)))
	fmt.Fprintf(&b, "%-24s %12s %10s %8s %7s %9s\n", "CONFIG", "MEAN", "SIZE", "UNDER", "PROBES", "ELAPSED")
	for _, res := range r.Results {
		id := res.Configuration.ID()
		if !res.OK() {
			fmt.Fprintf(&b, "%-24s %s\n", id, failStyle.Render("failed: "+res.Err.Error()))
			continue
		}
		fmt.Fprintf(&b, "%-24s %12s %10s %8s %7d %9s\n",
			id,
			format.HumanizeKbps(MeanKbps(res)),
			format.HumanizeBytes(EstimatedBytes(res)),
			fmt.Sprintf("%d/%d", res.UnderTarget(), len(res.Decisions)),
			res.Probes(),
			format.Seconds(res.Elapsed.Seconds()),
		)
	}
	if n := r.Failed(); n > 0 {
		fmt.Fprintf(&b, "%d of %d configurations failed\n", n, len(r.Results))
	}
	return b.String()
}
