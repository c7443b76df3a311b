package index

import (
	"fmt"
	"strings"
	"time"
)

// maxReportedSkips caps the skipped paths listed in a report.
const maxReportedSkips = 20

// Report summarises a build as Markdown.
func Report(s *Stats) string {
	var b strings.Builder
	b.WriteString("# Index built\n\n")
	fmt.Fprintf(&b, "| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Root | `%s` |\n", s.Root)
	fmt.Fprintf(&b, "| Index | `%s` |\n", s.IndexPath)
	fmt.Fprintf(&b, "| Files found | %d |\n", s.FilesTotal)
	fmt.Fprintf(&b, "| Files indexed | %d |\n", s.FilesIndexed)
	fmt.Fprintf(&b, "| Files skipped | %d |\n", s.FilesSkipped)
	fmt.Fprintf(&b, "| Duration | %s |\n", s.Duration.Round(time.Millisecond))

	if len(s.Skipped) > 0 {
		b.WriteString("\n## Skipped\n\n")
		for i, sk := range s.Skipped {
			if i == maxReportedSkips {
				fmt.Fprintf(&b, "- ... and %d more\n", len(s.Skipped)-maxReportedSkips)
				break
			}
			fmt.Fprintf(&b, "- `%s`: %v\n", sk.Path, sk.Err)
		}
	}
	return b.String()
}
