package health

import (
	"fmt"
	"strings"
)

func glyph(s Status) string {
	switch s {
	case StatusHealthy:
		return "✅"
	case StatusDegraded:
		return "⚠️"
	default:
		return "❌"
	}
}

// Render formats a check result as human-readable text: one glyph-prefixed
// line per server, a summary line, and a troubleshooting section appended
// only when at least one server is not healthy.
func Render(result CheckResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Server health as of %s\n\n", result.Timestamp.Format("2006-01-02 15:04:05 MST"))

	for _, rec := range result.Records {
		fmt.Fprintf(&b, "  %s %s: %s (%dms)\n", glyph(rec.Status), rec.Server, rec.Status, rec.CheckDurationMs)
		if rec.LastError != "" {
			fmt.Fprintf(&b, "      %s\n", rec.LastError)
		}
	}

	s := result.Summary
	fmt.Fprintf(&b, "\n%d server(s): %d healthy, %d degraded, %d down\n", s.Total, s.Healthy, s.Degraded, s.Down)

	if !result.Healthy() {
		b.WriteString(`
Troubleshooting:
  - degraded: the server responded but appears to need credentials.
    Check the env settings for that server in the config file.
  - down: the server did not start or did not answer in time.
    Try running its launch command manually and check its output.
`)
	}

	return b.String()
}
