package ocr

import (
	"path/filepath"
	"strings"
)

// snippet returns a shortened version of s for logging.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// keep whole runes
	cut := strings.ToValidUTF8(s[:max], "")
	return cut + "…"
}

// normalizeOCRText collapses whitespace and replaces newlines/tabs.
func normalizeOCRText(t string) string {
	t = strings.ReplaceAll(t, "\n", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	return strings.Join(strings.Fields(t), " ")
}

// SupportedExt reports whether name looks like a screenshot we can read.
// Files carrying ".ocr." are our own intermediates and are skipped.
func SupportedExt(name string) bool {
	if strings.Contains(name, ".ocr.") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}
