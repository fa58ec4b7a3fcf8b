package service

import (
	"fmt"
	"strconv"
	"strings"
)

// NextInvoiceNumber produces the next number in the fixed-width sequence.
// Given the highest existing number (e.g. OFC00000219 with prefix OFC and
// width 8) it increments the numeric suffix and re-pads. An empty max means
// no invoice exists yet and the configured seed is issued as-is.
func NextInvoiceNumber(max, prefix string, width, seed int) (string, error) {
	if strings.TrimSpace(max) == "" {
		return formatInvoiceNumber(prefix, width, seed), nil
	}

	if !strings.HasPrefix(max, prefix) {
		return "", fmt.Errorf("invoice number %q does not match prefix %q", max, prefix)
	}

	suffix := strings.TrimPrefix(max, prefix)
	if len(suffix) != width {
		return "", fmt.Errorf("invoice number %q has suffix width %d, want %d", max, len(suffix), width)
	}

	current, err := strconv.Atoi(suffix)
	if err != nil {
		return "", fmt.Errorf("malformed invoice number %q: %w", max, err)
	}

	return formatInvoiceNumber(prefix, width, current+1), nil
}

func formatInvoiceNumber(prefix string, width, value int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, value)
}
