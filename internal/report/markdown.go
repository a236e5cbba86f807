package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/petrd/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the run summary.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("petrd Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", "`" + summary.RunID + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Files", strconv.Itoa(summary.Total)},
			{"Succeeded", strconv.Itoa(summary.Succeeded)},
			{"Failed", strconv.Itoa(summary.Failed)},
			{"Payload bytes", strconv.FormatInt(summary.PayloadBytes, 10)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, summary)
	w.writeKinds(md, summary)
	w.writeFiles(md, summary.Outcomes)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by petrd*")

	return len(md.String()), md.Build()
}

// WriteOutcome outputs a single outcome as a one-row files table.
func (w *MarkdownWriter) WriteOutcome(outcome *model.Outcome) (int, error) {
	md := markdown.NewMarkdown(w.output)
	w.writeFiles(md, []*model.Outcome{outcome})
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *model.RunSummary) {
	switch {
	case summary.Total == 0:
		md.Note("No files were processed.")
	case summary.Failed == summary.Total:
		md.Cautionf("All %d file(s) failed.", summary.Failed)
	case summary.Failed > 0:
		md.Warningf("%d of %d file(s) failed.", summary.Failed, summary.Total)
	default:
		md.Tip("All files were unpacked and validated.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeKinds(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("File Kinds")
	md.PlainText("")

	names := summary.KindNames()
	if len(names) == 0 {
		md.PlainText("No files classified.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(names))
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Files by Kind"),
		piechart.WithShowData(true),
	)
	for _, name := range names {
		count := summary.ByKind[name]
		rows = append(rows, []string{label(name), strconv.Itoa(count)})
		chart.LabelAndIntValue(label(name), uint64(count))
	}
	md.Table(markdown.TableSet{Header: []string{"Kind", "Count"}, Rows: rows})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFiles(md *markdown.Markdown, outcomes []*model.Outcome) {
	md.H2("Files")
	md.PlainText("")

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{
			"`" + o.Source + "`",
			label(o.Kind.String()),
			statusLabel(o),
			orDash(o.PayloadPath),
			strconv.FormatInt(o.PayloadBytes, 10),
			orDash(o.HeaderPath),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Source", "Kind", "Status", "Payload", "Bytes", "Header"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, o := range outcomes {
		if o.ErrorMessage != "" {
			md.Details(o.Source, o.ErrorMessage)
		}
	}
	md.PlainText("")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
