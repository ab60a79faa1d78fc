package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"secretpeek/internal/provider"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	crumbStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	dirtyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
)

// maxValueWidth caps how much of a secret value a browsing row shows.
const maxValueWidth = 60

// maskedValue replaces secret material in hidden mode. Fixed width so the
// frame leaks nothing about value length.
const maskedValue = "••••••••"

// header renders the title line and the breadcrumb trail.
func header(crumbs []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("secretpeek"))
	b.WriteString("\r\n")
	b.WriteString(crumbStyle.Render(strings.Join(crumbs, " > ")))
	b.WriteString("\r\n\r\n")
	return b.String()
}

// footer renders the key hint line.
func footer(hints ...string) string {
	return "\r\n" + dimStyle.Render(strings.Join(hints, "  ")) + "\r\n"
}

// statusLines renders the transient status and error lines, if any.
func statusLines(status, errMsg string) string {
	var b strings.Builder
	if status != "" {
		b.WriteString("\r\n" + statusStyle.Render(status) + "\r\n")
	}
	if errMsg != "" {
		b.WriteString("\r\n" + errorStyle.Render(errMsg) + "\r\n")
	}
	return b.String()
}

// truncate shortens s to at most width display cells, unicode-aware.
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// searchLine renders the filter query line for list screens.
func searchLine(query string, searching bool) string {
	if query == "" && !searching {
		return ""
	}
	cursor := ""
	if searching {
		cursor = "_"
	}
	return fmt.Sprintf("/%s%s\r\n\r\n", query, cursor)
}

// kindLabel maps a storage kind to its display name.
func kindLabel(kind provider.Kind) string {
	switch kind {
	case provider.KindAWS:
		return "AWS Secrets Manager"
	case provider.KindCluster:
		return "Cluster secrets"
	case provider.KindJSON:
		return "JSON files"
	case provider.KindEnv:
		return "Env files"
	default:
		return string(kind)
	}
}

// labelKind is the inverse of kindLabel.
func labelKind(label string) provider.Kind {
	for _, k := range provider.Kinds() {
		if kindLabel(k) == label {
			return k
		}
	}
	return provider.Kind(label)
}
