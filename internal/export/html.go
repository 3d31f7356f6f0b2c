// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/rorymaher2092/ava-tui/internal/answer"
	"github.com/rorymaher2092/ava-tui/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to HTML format with embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}
	if conv.CreatedAt.IsZero() {
		return nil, fmt.Errorf("conversation has invalid creation timestamp")
	}

	var sb strings.Builder

	// HTML header
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(conv.GetTitle())))
	sb.WriteString("    <meta name=\"generator\" content=\"ava\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", conv.CreatedAt.Format(time.RFC3339)))

	// Embedded CSS
	sb.WriteString(e.getCSS())

	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.options.Theme))

	// Container
	sb.WriteString("    <div class=\"container\">\n")

	// Header with metadata
	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(conv))
	}

	// Conversation messages
	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range conv.Messages {
		sb.WriteString(e.renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	// Footer
	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>Ava</strong> on %s</p>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")

	sb.WriteString("    </div>\n")

	// Theme toggle script
	sb.WriteString(e.getScript())

	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderHeader renders the header section with metadata.
func (e *HTMLExporter) renderHeader(conv *model.Conversation) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(conv.GetTitle())))
	sb.WriteString("            <div class=\"metadata\">\n")
	if conv.BotID != "" {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Bot:</strong> %s</span>\n", html.EscapeString(botLabel(conv.BotID))))
	}
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(conv.CreatedAt)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(conv.Messages)))
	if conv.TokensUsed > 0 {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Tokens:</strong> %d</span>\n", conv.TokensUsed))
	}
	sb.WriteString("                <button class=\"theme-toggle\" onclick=\"toggleTheme()\" title=\"Toggle theme\">[Theme]</button>\n")
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

// renderMessage renders a single message.
func (e *HTMLExporter) renderMessage(msg *model.Message) string {
	var sb strings.Builder

	roleClass := strings.ToLower(msg.Role.String())
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", roleClass))

	// Message header
	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", html.EscapeString(msg.Role.DisplayName())))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp)))
	}
	sb.WriteString("                </div>\n")

	// Message content
	sb.WriteString("                <div class=\"message-content\">\n")
	if msg.Role == model.RoleAssistant {
		sb.WriteString(e.renderAnswer(msg))
	} else {
		sb.WriteString(e.formatContent(msg.Content))
		for _, att := range msg.Attachments {
			sb.WriteString(fmt.Sprintf("<p class=\"attachment\">Attached: %s (%s)</p>\n",
				html.EscapeString(att.Name), formatSize(att.SizeBytes)))
		}
	}
	sb.WriteString("                </div>\n")

	// Statistics for assistant messages
	if msg.Role == model.RoleAssistant && e.options.IncludeMetadata {
		stats := e.renderMessageStats(msg)
		if stats != "" {
			sb.WriteString(stats)
		}
	}

	sb.WriteString("            </div>\n")

	return sb.String()
}

// renderAnswer renders an assistant answer from its extracted segments.
// Citations become numbered anchors: document references jump to the
// per-answer reference list, external links open the target page.
func (e *HTMLExporter) renderAnswer(msg *model.Message) string {
	res := msg.Reparse()

	var body strings.Builder
	for _, seg := range res.Segments {
		if seg.Kind == answer.SegmentCitation {
			c := seg.Citation
			if c.Kind == answer.KindExternalLink {
				body.WriteString(fmt.Sprintf("<a class=\"citation citation-link\" href=\"%s\" target=\"_blank\" rel=\"noopener\" title=\"%s\">[%d]</a>",
					html.EscapeString(c.TargetURL), html.EscapeString(c.DisplayTitle), c.Ordinal))
			} else {
				body.WriteString(fmt.Sprintf("<a class=\"citation\" href=\"#%s-ref-%d\" title=\"%s\">[%d]</a>",
					msg.ID, c.Ordinal, html.EscapeString(c.DisplayTitle), c.Ordinal))
			}
		} else {
			body.WriteString(html.EscapeString(seg.Text))
		}
	}

	var sb strings.Builder
	sb.WriteString(e.formatEscaped(body.String()))
	sb.WriteString("\n")

	if res.HasKnowledgeGap {
		sb.WriteString("<div class=\"gap-notice\">The knowledge base may not fully cover this question.</div>\n")
	}

	if len(res.Citations) > 0 {
		sb.WriteString("<div class=\"references\"><strong>References</strong>\n<ol>\n")
		for _, c := range res.Citations {
			if c.Kind == answer.KindExternalLink {
				sb.WriteString(fmt.Sprintf("    <li id=\"%s-ref-%d\"><a href=\"%s\" target=\"_blank\" rel=\"noopener\">%s</a></li>\n",
					msg.ID, c.Ordinal, html.EscapeString(c.TargetURL), html.EscapeString(c.DisplayTitle)))
			} else {
				sb.WriteString(fmt.Sprintf("    <li id=\"%s-ref-%d\">%s</li>\n",
					msg.ID, c.Ordinal, html.EscapeString(c.DisplayTitle)))
			}
		}
		sb.WriteString("</ol></div>\n")
	}

	sb.WriteString(e.renderArtifact("Process diagram", res.Diagram))
	sb.WriteString(e.renderArtifact("Story map", res.StoryMap))

	if len(msg.FollowupQuestions) > 0 {
		sb.WriteString("<div class=\"followups\"><strong>Suggested follow-ups</strong>\n<ul>\n")
		for _, q := range msg.FollowupQuestions {
			sb.WriteString(fmt.Sprintf("    <li>%s</li>\n", html.EscapeString(q)))
		}
		sb.WriteString("</ul></div>\n")
	}

	return sb.String()
}

// renderArtifact renders a side-channel payload as a collapsible block.
// Story maps are Markdown tables and render as real tables when they
// parse; everything else falls back to a preformatted block.
func (e *HTMLExporter) renderArtifact(label string, p *answer.Payload) string {
	if p == nil {
		return ""
	}
	summary := label
	if p.Title != "" {
		summary += ": " + p.Title
	}

	var sb strings.Builder
	sb.WriteString("<details class=\"artifact\">\n")
	sb.WriteString(fmt.Sprintf("    <summary>%s</summary>\n", html.EscapeString(summary)))
	if p.Kind == answer.PayloadStoryMap {
		if table, ok := renderStoryMapTable(p.Body); ok {
			sb.WriteString(table)
		} else {
			sb.WriteString(fmt.Sprintf("    <pre><code>%s</code></pre>\n", html.EscapeString(strings.TrimSpace(p.Body))))
		}
	} else {
		sb.WriteString(fmt.Sprintf("    <pre><code>%s</code></pre>\n", html.EscapeString(strings.TrimSpace(p.Body))))
	}
	sb.WriteString("</details>\n")
	return sb.String()
}

// renderStoryMapTable converts a Markdown table to an HTML table. Returns
// false when the body does not hold a recognizable table, in which case
// the caller falls back to preformatted text. Non-table lines (such as a
// leading title comment) are skipped; the title is already in the summary.
func renderStoryMapTable(body string) (string, bool) {
	var rows [][]string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		cells := strings.Split(strings.Trim(line, "|"), "|")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		rows = append(rows, cells)
	}
	if len(rows) < 2 || !isTableSeparator(rows[1]) {
		return "", false
	}

	var sb strings.Builder
	sb.WriteString("    <table class=\"story-map\">\n        <thead><tr>\n")
	for _, cell := range rows[0] {
		sb.WriteString(fmt.Sprintf("            <th>%s</th>\n", html.EscapeString(cell)))
	}
	sb.WriteString("        </tr></thead>\n        <tbody>\n")
	for _, row := range rows[2:] {
		sb.WriteString("        <tr>\n")
		for _, cell := range row {
			sb.WriteString(fmt.Sprintf("            <td>%s</td>\n", html.EscapeString(cell)))
		}
		sb.WriteString("        </tr>\n")
	}
	sb.WriteString("        </tbody>\n    </table>\n")
	return sb.String(), true
}

// isTableSeparator reports whether a row is the header separator of a
// Markdown table (cells of dashes with optional alignment colons).
func isTableSeparator(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, cell := range cells {
		trimmed := strings.Trim(cell, ":")
		if trimmed == "" || strings.Trim(trimmed, "-") != "" {
			return false
		}
	}
	return true
}

// renderMessageStats renders statistics for a message.
func (e *HTMLExporter) renderMessageStats(msg *model.Message) string {
	if msg.TokenCount == 0 && msg.TotalDuration == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("                <div class=\"message-stats\">\n")

	if msg.TokenCount > 0 {
		sb.WriteString(fmt.Sprintf("                    <span class=\"stat\">Tokens: %d</span>\n", msg.TokenCount))
	}
	if msg.TotalDuration > 0 {
		sb.WriteString(fmt.Sprintf("                    <span class=\"stat\">Time: %s</span>\n", formatDuration(msg.TotalDuration)))
	}
	if msg.TTFT > 0 {
		sb.WriteString(fmt.Sprintf("                    <span class=\"stat\">TTFT: %s</span>\n", formatDuration(msg.TTFT)))
	}
	if msg.TokensPerSec > 0 {
		sb.WriteString(fmt.Sprintf("                    <span class=\"stat\">Speed: %s</span>\n", formatTokensPerSec(msg.TokensPerSec)))
	}

	sb.WriteString("                </div>\n")
	return sb.String()
}

// =============================================================================
// CONTENT FORMATTING
// =============================================================================

// formatContent escapes raw message content and applies block formatting.
func (e *HTMLExporter) formatContent(content string) string {
	return e.formatEscaped(html.EscapeString(content))
}

// codeBlockPattern matches a fenced code block in already-escaped text;
// group 1 is the language tag, group 2 the body.
var codeBlockPattern = regexp.MustCompile("```([a-zA-Z0-9_+-]*)\n([\\s\\S]*?)```")

// inlineCodePattern matches inline code spans.
var inlineCodePattern = regexp.MustCompile("`([^`]+)`")

// formatEscaped converts fenced code blocks and inline code to HTML and
// wraps prose runs in paragraphs. The input must already be HTML-escaped;
// citation anchors inserted by the caller pass through untouched.
func (e *HTMLExporter) formatEscaped(content string) string {
	content = codeBlockPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := codeBlockPattern.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		lang := parts[1]
		code := parts[2]

		langLabel := ""
		if lang != "" {
			langLabel = fmt.Sprintf("<div class=\"code-lang\">%s</div>", html.EscapeString(lang))
		}

		return fmt.Sprintf("<div class=\"code-block\">%s<pre><code class=\"language-%s\">%s</code></pre></div>",
			langLabel, html.EscapeString(lang), strings.TrimSpace(code))
	})

	content = inlineCodePattern.ReplaceAllString(content, "<code class=\"inline-code\">$1</code>")

	// Wrap prose in paragraphs, leaving code block markup alone.
	lines := strings.Split(content, "\n")
	var formatted []string
	inParagraph := false

	for i, line := range lines {
		line = strings.TrimSpace(line)

		if strings.Contains(line, "<div class=\"code-block\">") ||
			strings.Contains(line, "</div>") ||
			strings.Contains(line, "<pre>") ||
			strings.Contains(line, "</pre>") {
			formatted = append(formatted, lines[i]) // keep original indentation
			inParagraph = false
			continue
		}

		if line == "" {
			if inParagraph {
				formatted = append(formatted, "</p>")
				inParagraph = false
			}
			formatted = append(formatted, "")
		} else {
			if !inParagraph && !strings.HasPrefix(line, "<") {
				formatted = append(formatted, "<p>"+line)
				inParagraph = true
			} else {
				formatted = append(formatted, line)
			}
		}
	}

	if inParagraph {
		formatted = append(formatted, "</p>")
	}

	return strings.Join(formatted, "\n")
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

// getCSS returns the embedded CSS for the HTML export. The palettes mirror
// the TUI themes so exports look like the app that produced them.
func (e *HTMLExporter) getCSS() string {
	return `    <style>
        /* Reset and base styles */
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Fira Code", "Source Code Pro", monospace;
        }

        /* Dark theme (default) */
        .dark-theme {
            --bg-primary: #181825;
            --bg-secondary: #1e1e2e;
            --bg-tertiary: #27273a;
            --text-primary: #e4e4e7;
            --text-secondary: #a1a1aa;
            --text-muted: #6b7280;
            --border-color: #45475a;
            --user-bg: #2e2a4a;
            --assistant-bg: #27273a;
            --code-bg: #181825;
            --accent-violet: #a78bfa;
            --accent-teal: #2dd4bf;
            --accent-sky: #7dd3fc;
            --accent-amber: #fbbf24;
            --accent-rose: #fb7185;
            --gap-bg: #3b2f1e;
        }

        /* Light theme */
        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #fafafa;
            --bg-tertiary: #f4f4f5;
            --text-primary: #18181b;
            --text-secondary: #3f3f46;
            --text-muted: #71717a;
            --border-color: #d4d4d8;
            --user-bg: #ede9fe;
            --assistant-bg: #f4f4f5;
            --code-bg: #f4f4f5;
            --accent-violet: #6d28d9;
            --accent-teal: #0f766e;
            --accent-sky: #0369a1;
            --accent-amber: #b45309;
            --accent-rose: #be123c;
            --gap-bg: #fef3c7;
        }

        body {
            font-family: var(--font-sans);
            font-size: 16px;
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
            transition: background 0.3s ease, color 0.3s ease;
        }

        .container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);
            overflow: hidden;
        }

        /* Header */
        .header {
            padding: 32px;
            background: var(--bg-tertiary);
            border-bottom: 2px solid var(--border-color);
        }

        .header h1 {
            font-size: 28px;
            font-weight: 700;
            margin-bottom: 16px;
            color: var(--text-primary);
        }

        .metadata {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            font-size: 14px;
            color: var(--text-secondary);
            align-items: center;
        }

        .meta-item {
            display: inline-flex;
            align-items: center;
            gap: 4px;
        }

        .theme-toggle {
            margin-left: auto;
            background: var(--bg-secondary);
            border: 1px solid var(--border-color);
            border-radius: 6px;
            padding: 6px 12px;
            cursor: pointer;
            font-size: 14px;
            color: var(--text-secondary);
            transition: all 0.2s ease;
        }

        .theme-toggle:hover {
            background: var(--bg-primary);
        }

        /* Conversation */
        .conversation {
            padding: 24px 32px;
        }

        .message {
            margin-bottom: 24px;
            padding: 20px;
            border-radius: 8px;
            border-left: 4px solid transparent;
        }

        .user-message {
            background: var(--user-bg);
            border-left-color: var(--accent-violet);
        }

        .assistant-message {
            background: var(--assistant-bg);
            border-left-color: var(--accent-teal);
        }

        .system-message {
            background: var(--bg-tertiary);
            border-left-color: var(--text-muted);
        }

        .message-header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 12px;
            font-size: 14px;
        }

        .role-label {
            font-weight: 600;
            color: var(--text-primary);
        }

        .timestamp {
            color: var(--text-muted);
            font-size: 13px;
            font-family: var(--font-mono);
        }

        .message-content {
            color: var(--text-primary);
            line-height: 1.7;
        }

        .message-content p {
            margin-bottom: 12px;
        }

        .message-content p:last-child {
            margin-bottom: 0;
        }

        /* Citations and references */
        .citation {
            color: var(--accent-sky);
            text-decoration: none;
            font-size: 0.85em;
            vertical-align: super;
        }

        .citation-link {
            color: var(--accent-teal);
        }

        .citation:hover {
            text-decoration: underline;
        }

        .references {
            margin-top: 16px;
            padding-top: 12px;
            border-top: 1px solid var(--border-color);
            font-size: 14px;
            color: var(--text-secondary);
        }

        .references ol {
            margin: 8px 0 0 24px;
        }

        .references a {
            color: var(--accent-teal);
        }

        /* Knowledge-gap notice */
        .gap-notice {
            margin-top: 16px;
            padding: 10px 14px;
            background: var(--gap-bg);
            border-left: 4px solid var(--accent-amber);
            border-radius: 4px;
            font-size: 14px;
        }

        /* Artifacts */
        .artifact {
            margin-top: 16px;
            border: 1px solid var(--border-color);
            border-radius: 8px;
            background: var(--code-bg);
        }

        .artifact summary {
            padding: 10px 14px;
            cursor: pointer;
            font-weight: 600;
            font-size: 14px;
            color: var(--text-secondary);
        }

        .artifact pre {
            margin: 0;
            padding: 16px;
            overflow-x: auto;
            font-family: var(--font-mono);
            font-size: 13px;
        }

        .story-map {
            width: 100%;
            margin: 0;
            border-collapse: collapse;
            font-size: 14px;
        }

        .story-map th, .story-map td {
            padding: 8px 12px;
            border: 1px solid var(--border-color);
            text-align: left;
            vertical-align: top;
        }

        .story-map th {
            background: var(--bg-tertiary);
            color: var(--text-primary);
        }

        /* Follow-ups */
        .followups {
            margin-top: 16px;
            font-size: 14px;
            color: var(--text-secondary);
        }

        .followups ul {
            margin: 8px 0 0 24px;
        }

        /* Attachments */
        .attachment {
            margin-top: 8px;
            font-size: 13px;
            font-style: italic;
            color: var(--text-muted);
        }

        /* Code blocks */
        .code-block {
            margin: 16px 0;
            border-radius: 8px;
            overflow: hidden;
            background: var(--code-bg);
            border: 1px solid var(--border-color);
        }

        .code-lang {
            padding: 8px 16px;
            background: var(--bg-tertiary);
            font-size: 12px;
            font-weight: 600;
            color: var(--text-secondary);
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }

        .code-block pre {
            margin: 0;
            padding: 16px;
            overflow-x: auto;
        }

        .code-block code {
            font-family: var(--font-mono);
            font-size: 14px;
            line-height: 1.5;
            color: var(--text-primary);
        }

        .inline-code {
            font-family: var(--font-mono);
            font-size: 14px;
            padding: 2px 6px;
            background: var(--code-bg);
            border: 1px solid var(--border-color);
            border-radius: 4px;
            color: var(--accent-violet);
        }

        /* Message stats */
        .message-stats {
            margin-top: 12px;
            padding-top: 12px;
            border-top: 1px solid var(--border-color);
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            font-size: 13px;
            color: var(--text-muted);
        }

        .stat {
            display: inline-flex;
            align-items: center;
            gap: 4px;
        }

        /* Footer */
        .footer {
            padding: 20px 32px;
            text-align: center;
            font-size: 14px;
            color: var(--text-muted);
            border-top: 1px solid var(--border-color);
        }

        /* Print styles */
        @media print {
            body {
                padding: 0;
            }

            .container {
                box-shadow: none;
                border-radius: 0;
            }

            .theme-toggle {
                display: none;
            }

            .message {
                page-break-inside: avoid;
            }

            .artifact {
                display: block;
            }
        }

        /* Responsive */
        @media (max-width: 768px) {
            body {
                padding: 10px;
            }

            .header, .conversation, .footer {
                padding: 16px;
            }

            .message {
                padding: 16px;
            }
        }
    </style>
`
}

// =============================================================================
// EMBEDDED JAVASCRIPT
// =============================================================================

// getScript returns the embedded JavaScript for theme toggling.
func (e *HTMLExporter) getScript() string {
	return `    <script>
        function toggleTheme() {
            const body = document.body;
            if (body.classList.contains('dark-theme')) {
                body.classList.remove('dark-theme');
                body.classList.add('light-theme');
                localStorage.setItem('theme', 'light');
            } else {
                body.classList.remove('light-theme');
                body.classList.add('dark-theme');
                localStorage.setItem('theme', 'dark');
            }
        }

        // Load saved theme preference
        document.addEventListener('DOMContentLoaded', function() {
            const savedTheme = localStorage.getItem('theme');
            if (savedTheme) {
                document.body.classList.remove('dark-theme', 'light-theme');
                document.body.classList.add(savedTheme + '-theme');
            }
        });
    </script>
`
}
