package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/feedbackdash/internal/summary"
	"github.com/dgallion1/feedbackdash/internal/survey"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem auto; max-width: 72rem; color: #1f2937; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #d1d5db; padding: .3rem .6rem; text-align: left; }
th { background: #f3f4f6; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// Page renders the dashboard for req as HTML.
func (s *Service) Page(ctx context.Context, req Request) ([]byte, error) {
	sel, err := s.selectData(ctx, req)
	if err != nil {
		return nil, err
	}
	md := Markdown(s.summarize(sel), sel.all.Periods(), sel.data.Questions())
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	var out bytes.Buffer
	err = pageTemplate.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{
		Title: "Feedback dos Pacientes - " + sel.period.String(),
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return out.Bytes(), nil
}

// Markdown writes the dashboard as GitHub-flavoured Markdown: headline
// figures, the summary tables, per-area charts, suggestions and download
// links.
func Markdown(sum *Summary, periods []survey.Period, questions []survey.Question) string {
	var b strings.Builder
	b.WriteString("# Feedback dos Pacientes\n\n")
	fmt.Fprintf(&b, "**Período:** %s | **Respostas:** %d | **Áreas analisadas:** %d\n\n",
		sum.Period, sum.Responses, len(questions))

	query := url.Values{}
	query.Set("year", strconv.Itoa(sum.Period.Year))
	query.Set("month", strconv.Itoa(int(sum.Period.Month)))

	if sum.Question != nil {
		query.Set("question", sum.Question.Title)
		fmt.Fprintf(&b, "## %s\n\n", escapeText(sum.Question.Title))
		if sum.Indicator != nil {
			fmt.Fprintf(&b, "Avaliações positivas: **%d** de %d (%s)\n\n",
				sum.Indicator.Positive, sum.Indicator.Total, summary.FormatPercent(sum.Indicator.PositivePercent))
		}
		t := summary.CountsTable(sum.Counts)
		writeTable(&b, t.Columns, t.Rows)
	} else if sum.Areas != nil {
		b.WriteString("## Áreas Atendidas\n\n")
		t := sum.Areas.Table()
		writeTable(&b, t.Columns, t.Rows)
		writeAreaCharts(&b, sum)
		if len(sum.Suggestions) > 0 {
			fmt.Fprintf(&b, "## Sugestões (%d)\n\n", len(sum.Suggestions))
			for _, s := range sum.Suggestions {
				fmt.Fprintf(&b, "- %s\n", escapeText(s))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Downloads\n\n")
	q := query.Encode()
	fmt.Fprintf(&b, "[PDF](/api/report.pdf?%s) | [Excel](/api/report.xlsx?%s) | [Word](/api/report.docx?%s) | [Gráfico](/api/chart.png?%s)\n\n", q, q, q, q)

	if len(periods) > 0 {
		b.WriteString("## Períodos\n\n")
		for _, p := range periods {
			v := url.Values{}
			v.Set("year", strconv.Itoa(p.Year))
			v.Set("month", strconv.Itoa(int(p.Month)))
			fmt.Fprintf(&b, "- [%s](/?%s)\n", p, v.Encode())
		}
		b.WriteString("\n")
	}
	if len(questions) > 0 {
		b.WriteString("## Perguntas\n\n")
		for _, qu := range questions {
			v := url.Values{}
			v.Set("year", strconv.Itoa(sum.Period.Year))
			v.Set("month", strconv.Itoa(int(sum.Period.Month)))
			v.Set("question", qu.Title)
			fmt.Fprintf(&b, "- [%s](/?%s)\n", escapeText(qu.Area), v.Encode())
		}
	}
	return b.String()
}

// writeAreaCharts links the chart of every area that has answers.
func writeAreaCharts(b *strings.Builder, sum *Summary) {
	header := false
	for _, row := range sum.Areas.Rows {
		if row.Total == 0 {
			continue
		}
		if !header {
			b.WriteString("## Gráficos por Área\n\n")
			header = true
		}
		v := url.Values{}
		v.Set("year", strconv.Itoa(sum.Period.Year))
		v.Set("month", strconv.Itoa(int(sum.Period.Month)))
		v.Set("question", row.Question)
		fmt.Fprintf(b, "### %s\n\n![%s](/api/chart.png?%s)\n\n", escapeText(row.Area), escapeText(row.Area), v.Encode())
	}
}

func writeTable(b *strings.Builder, cols []string, rows [][]string) {
	b.WriteString("|")
	for _, c := range cols {
		b.WriteString(" " + escapeCell(c) + " |")
	}
	b.WriteString("\n|")
	for range cols {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("|")
		for _, c := range row {
			b.WriteString(" " + escapeCell(c) + " |")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"<", "&lt;", ">", "&gt;", "`", "\\`", "#", `\#`,
)

func escapeText(s string) string {
	return textEscaper.Replace(strings.Join(strings.Fields(s), " "))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(escapeText(s), "|", `\|`)
}
