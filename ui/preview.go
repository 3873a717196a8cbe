package ui

import (
	"fmt"
	"strings"

	"calcdash/domain/dashboard"
	"calcdash/internal/reconcile"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderPreview turns the per-section preview lines into an HTML fragment
// for HTMX callers. Raw HTML in section values is dropped.
func renderPreview(mode reconcile.Mode, preview map[dashboard.Section]string) []byte {
	var md strings.Builder
	fmt.Fprintf(&md, "### Preview (%s upload)\n\n", mode)
	for _, sec := range dashboard.AllSections {
		line, ok := preview[sec]
		if !ok {
			continue
		}
		fmt.Fprintf(&md, "- **%s**: %s\n", sec, escapeMarkdown(line))
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.SkipHTML})
	return markdown.ToHTML([]byte(md.String()), p, renderer)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
