package render

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/types"
)

// Field labels inside the deployment panels. All are 15 cells wide so the
// values start in the same column.
const (
	labelRepository = "Repository:    "
	labelBranch     = "Branch:        "
	labelCommit     = "Commit:        "
	labelAuthor     = "Author:        "
	labelDeployID   = "Deploy ID:     "
	labelDuration   = "Duration:      "
	labelStatus     = "Status:        "
)

const (
	// commitCellWidth bounds the "sha (message)" cell so the row never
	// overflows the panel.
	commitCellWidth = 44
	// logLineWidth bounds each echoed log or error line.
	logLineWidth = 55
)

// Rendered is a transport-ready payload body: plain text plus optional
// structured blocks for clients that support them.
type Rendered struct {
	Text   string
	Blocks []map[string]any
}

// Renderer builds notification payloads. Deployment lifecycle events get a
// canned terminal-style panel; every other kind goes through the generic
// template path with a plain-text fallback. Rendering never fails: any
// template problem degrades to "title\n\nmessage".
type Renderer struct {
	logger    *zap.Logger
	templates map[types.EventKind]types.Template
	now       func() time.Time
}

// NewRenderer creates a Renderer over the given template set. templates may
// be nil; every lookup miss falls back to plain text.
func NewRenderer(logger *zap.Logger, templates map[types.EventKind]types.Template) *Renderer {
	return &Renderer{
		logger:    logger.Named("renderer"),
		templates: templates,
		now:       time.Now,
	}
}

// Render produces the payload body for a request.
func (r *Renderer) Render(req types.NotificationRequest) Rendered {
	switch req.EventKind {
	case types.EventDeploymentStarted, types.EventDeploymentSuccess, types.EventDeploymentFailed:
		return Rendered{
			Text:   fallbackText(req),
			Blocks: r.deploymentBlocks(req),
		}
	}
	return Rendered{Text: r.renderGeneric(req)}
}

// renderGeneric substitutes the request context into the template registered
// for the event kind. A missing template, an undeclared variable, or any
// parse/execute error falls back to plain text; the failure is logged but
// never surfaces to the caller.
func (r *Renderer) renderGeneric(req types.NotificationRequest) string {
	tpl, ok := r.templates[req.EventKind]
	if !ok {
		return fallbackText(req)
	}

	data := make(map[string]string, len(req.Context)+2)
	for k, v := range req.Context {
		data[k] = v
	}
	data["title"] = req.Title
	data["message"] = req.Message

	// Validate declared variables up front instead of relying on a
	// substitution failure halfway through.
	for _, name := range tpl.Variables {
		if _, ok := data[name]; !ok {
			r.logger.Warn("Template variable missing, falling back to plain text",
				zap.String("event_kind", string(req.EventKind)),
				zap.String("template", tpl.Name),
				zap.String("variable", name),
			)
			return fallbackText(req)
		}
	}

	t, err := template.New(tpl.Name).Option("missingkey=error").Parse(tpl.Content)
	if err != nil {
		r.logger.Warn("Template parse failed, falling back to plain text",
			zap.String("event_kind", string(req.EventKind)),
			zap.String("template", tpl.Name),
			zap.Error(err),
		)
		return fallbackText(req)
	}

	var buf strings.Builder
	if err := t.Execute(&buf, data); err != nil {
		r.logger.Warn("Template render failed, falling back to plain text",
			zap.String("event_kind", string(req.EventKind)),
			zap.String("template", tpl.Name),
			zap.Error(err),
		)
		return fallbackText(req)
	}
	return buf.String()
}

// fallbackText is the render path of last resort and the default format for
// kinds without a registered template.
func fallbackText(req types.NotificationRequest) string {
	return req.Title + "\n\n" + req.Message
}

// deployContext is the typed view of a deployment request's context map.
type deployContext struct {
	repo            string
	branch          string
	commitSHA       string
	commitMessage   string
	author          string
	deploymentID    int
	durationSeconds int
	errorMessage    string
	appURL          string
	logs            string
}

func deployContextFrom(req types.NotificationRequest) deployContext {
	ctx := req.Context
	get := func(key, fallback string) string {
		if v, ok := ctx[key]; ok && v != "" {
			return v
		}
		return fallback
	}
	atoi := func(key string) int {
		n, err := strconv.Atoi(ctx[key])
		if err != nil {
			return 0
		}
		return n
	}
	return deployContext{
		repo:            get("repo", "unknown"),
		branch:          get("branch", "main"),
		commitSHA:       ctx["commit_sha"],
		commitMessage:   get("commit_message", req.Message),
		author:          get("author", "system"),
		deploymentID:    atoi("deployment_id"),
		durationSeconds: atoi("duration_seconds"),
		errorMessage:    get("error_message", "Unknown error"),
		appURL:          ctx["app_url"],
		logs:            ctx["logs"],
	}
}

// commitCell builds the "sha (first line of message)" panel value.
func commitCell(dc deployContext) string {
	cell := fmt.Sprintf("%s (%s)", ShortSHA(dc.commitSHA), firstLine(dc.commitMessage, 30))
	return truncateRunes(cell, commitCellWidth)
}

// deploymentBlocks assembles the full terminal-style block payload for a
// deployment lifecycle event.
func (r *Renderer) deploymentBlocks(req types.NotificationRequest) []map[string]any {
	dc := deployContextFrom(req)
	ts := r.now().Unix()

	blocks := []map[string]any{
		sectionBlock(codeFence(banner())),
	}

	switch req.EventKind {
	case types.EventDeploymentStarted:
		blocks = append(blocks,
			sectionBlock(codeFence(r.startedBody(dc))),
			contextBlock(fmt.Sprintf("🚀 Started %s | Track progress in real-time", slackDate(ts))),
		)
	case types.EventDeploymentSuccess:
		blocks = append(blocks, sectionBlock(codeFence(r.successBody(dc))))
		if dc.appURL != "" {
			blocks = append(blocks, actionsBlock(dc.appURL))
		}
		blocks = append(blocks, contextBlock(
			fmt.Sprintf("✅ Completed %s by *%s* | Deployment #%d", slackDate(ts), dc.author, dc.deploymentID)))
	case types.EventDeploymentFailed:
		blocks = append(blocks,
			sectionBlock(codeFence(r.failedBody(dc))),
			contextBlock(fmt.Sprintf("❌ Failed %s by *%s* | Deployment #%d", slackDate(ts), dc.author, dc.deploymentID)),
		)
	}
	return blocks
}

func (r *Renderer) startedBody(dc deployContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "$ k-le-paas deploy start --repo %s --branch %s\n\n", dc.repo, dc.branch)
	b.WriteString(HeaderLine("DEPLOYMENT INITIATED", BoxWidth) + "\n")
	writeCommonRows(&b, dc)
	b.WriteString(Row(labelStatus, "🔄 IN PROGRESS", BoxWidth) + "\n")
	b.WriteString(FooterLine(BoxWidth) + "\n")
	b.WriteString(`
[INFO] Initializing deployment pipeline...
[INFO] ⠿ Validating configuration
[INFO] ⠿ Building container image
[INFO] ⠿ Running pre-deployment tests
[INFO] ⠿ Preparing deployment manifest

⏳ Deployment in progress... Please wait.`)
	return b.String()
}

func (r *Renderer) successBody(dc deployContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "$ k-le-paas deploy complete --id %d\n\n", dc.deploymentID)
	b.WriteString(HeaderLine("✅ DEPLOYMENT SUCCESSFUL", BoxWidth) + "\n")
	writeCommonRows(&b, dc)
	b.WriteString(Row(labelDuration, durationCell(dc.durationSeconds), BoxWidth) + "\n")
	b.WriteString(FooterLine(BoxWidth) + "\n\n")

	// Per-stage timings are an estimated split of the total duration.
	fmt.Fprintf(&b, "[SUCCESS] ✓ %-29s(%ds)\n", "Configuration validated", 5)
	fmt.Fprintf(&b, "[SUCCESS] ✓ %-29s(%ds)\n", "Container image built", dc.durationSeconds*35/100)
	fmt.Fprintf(&b, "[SUCCESS] ✓ %-29s(%ds)\n", "Tests passed", dc.durationSeconds*25/100)
	fmt.Fprintf(&b, "[SUCCESS] ✓ %-29s(%ds)\n", "Deployment manifest applied", dc.durationSeconds*20/100)
	fmt.Fprintf(&b, "[SUCCESS] ✓ %-29s(%ds)", "Health checks passed", dc.durationSeconds*20/100)

	if lines := lastLines(dc.logs, 10); len(lines) > 0 {
		b.WriteString("\n\n[INFO] Deployment logs (last 10 lines):\n")
		writeLogLines(&b, lines)
	}

	b.WriteString("\n\n[INFO] Application is LIVE and serving traffic ✨\n")
	b.WriteString("[INFO] All monitoring checks: PASSED 💚\n\n")
	b.WriteString("Exit code: 0 (SUCCESS)")
	return b.String()
}

func (r *Renderer) failedBody(dc deployContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "$ k-le-paas deploy failed --id %d\n\n", dc.deploymentID)
	b.WriteString(HeaderLine("❌ DEPLOYMENT FAILED", BoxWidth) + "\n")
	writeCommonRows(&b, dc)
	b.WriteString(Row(labelDuration, durationCell(dc.durationSeconds), BoxWidth) + "\n")
	b.WriteString(FooterLine(BoxWidth) + "\n\n")

	b.WriteString("[ERROR] Deployment failed with errors:\n")
	errorLines := strings.Split(dc.errorMessage, "\n")
	if len(errorLines) > 3 {
		errorLines = errorLines[:3]
	}
	writeLogLines(&b, errorLines)

	if lines := lastLines(dc.logs, 5); len(lines) > 0 {
		b.WriteString("\n\n[ERROR] Recent logs:\n")
		writeLogLines(&b, lines)
	}

	b.WriteString("\n\n[ERROR] Deployment aborted 💥\n")
	b.WriteString("[INFO] Rolling back to previous stable version...\n\n")
	b.WriteString("Exit code: 1 (FAILED)")
	return b.String()
}

// writeCommonRows emits the panel rows shared by all deployment layouts.
func writeCommonRows(b *strings.Builder, dc deployContext) {
	b.WriteString(Row(labelRepository, dc.repo, BoxWidth) + "\n")
	b.WriteString(Row(labelBranch, dc.branch, BoxWidth) + "\n")
	b.WriteString(Row(labelCommit, commitCell(dc), BoxWidth) + "\n")
	b.WriteString(Row(labelAuthor, dc.author, BoxWidth) + "\n")
	b.WriteString(Row(labelDeployID, fmt.Sprintf("#%d", dc.deploymentID), BoxWidth) + "\n")
}

func durationCell(seconds int) string {
	return fmt.Sprintf("%s (%ds)", FormatDuration(seconds), seconds)
}

// writeLogLines echoes lines in the panel gutter style, each bounded to
// logLineWidth cells.
func writeLogLines(b *strings.Builder, lines []string) {
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("  │ " + TruncateWidth(line, logLineWidth))
	}
}

// banner is the fixed masthead above every deployment panel.
func banner() string {
	const title = "K-LE-PAAS DEPLOYMENT SYSTEM"
	inner := interior(BoxWidth)
	left := (inner - len(title)) / 2
	right := inner - len(title) - left
	return "╔" + strings.Repeat("═", inner) + "╗\n" +
		"║" + strings.Repeat(" ", left) + title + strings.Repeat(" ", right) + "║\n" +
		"╚" + strings.Repeat("═", inner) + "╝"
}

func codeFence(body string) string {
	return "```\n" + body + "\n```"
}

// slackDate renders a client-localized timestamp with a plain fallback.
func slackDate(ts int64) string {
	return fmt.Sprintf("<!date^%d^{date_short_pretty} at {time}|just now>", ts)
}

func sectionBlock(text string) map[string]any {
	return map[string]any{
		"type": "section",
		"text": map[string]any{"type": "mrkdwn", "text": text},
	}
}

func contextBlock(text string) map[string]any {
	return map[string]any{
		"type": "context",
		"elements": []map[string]any{
			{"type": "mrkdwn", "text": text},
		},
	}
}

// actionsBlock appends the launch/metrics buttons. Only emitted when an
// application URL is known.
func actionsBlock(appURL string) map[string]any {
	return map[string]any{
		"type": "actions",
		"elements": []map[string]any{
			{
				"type":  "button",
				"text":  map[string]any{"type": "plain_text", "text": "🌐 Launch Application", "emoji": true},
				"url":   appURL,
				"style": "primary",
			},
			{
				"type": "button",
				"text": map[string]any{"type": "plain_text", "text": "📊 View Metrics", "emoji": true},
				"url":  appURL + "/metrics",
			},
		},
	}
}
