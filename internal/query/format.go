package query

import "fmt"

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

// NoContentType is shown, and searched, in place of an absent content type.
const NoContentType = "No MIME Type Inferred"

// FormatSize renders a byte count for display. Values of a KiB and above are
// shown with two decimals, rounded half to even from the exact binary value.
func FormatSize(bytes uint64) string {
	switch {
	case bytes < kib:
		return fmt.Sprintf("%d bytes", bytes)
	case bytes < mib:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kib)
	case bytes < gib:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mib)
	default:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gib)
	}
}
