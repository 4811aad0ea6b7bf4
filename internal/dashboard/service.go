// Package dashboard answers report requests: it loads the survey, selects the
// period and question, aggregates, and renders each output format.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/feedbackdash/internal/chart"
	"github.com/dgallion1/feedbackdash/internal/export"
	"github.com/dgallion1/feedbackdash/internal/report"
	"github.com/dgallion1/feedbackdash/internal/summary"
	"github.com/dgallion1/feedbackdash/internal/survey"
)

// chartWidth is the width of a chart in the PDF, in mm.
const chartWidth = 160

// AllQuestions selects the per-area summary instead of a single question.
const AllQuestions = "Todas as Perguntas"

// Request carries the user's selection. Zero Year or Month picks the default
// period; an empty Question (or AllQuestions) selects every question.
type Request struct {
	Year     int
	Month    time.Month
	Question string
}

func (r Request) allQuestions() bool {
	q := strings.TrimSpace(r.Question)
	return q == "" || q == AllQuestions
}

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePNG  = "image/png"
)

// Options configures a Service.
type Options struct {
	Layout survey.Layout
	Report report.Options // template; CreatedAt and ReportID are set per report
	Now    func() time.Time
}

// Service is safe for concurrent use when its Source is.
type Service struct {
	src   survey.Source
	opts  Options
	log   *slog.Logger
	stats *RenderStats
}

func NewService(src survey.Source, opts Options, log *slog.Logger) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Report.Title == "" {
		opts.Report.Title = "Relatório de Satisfação dos Pacientes"
	}
	return &Service{
		src:   src,
		opts:  opts,
		log:   log,
		stats: NewRenderStats(time.Hour),
	}
}

// Stats exposes the render latency window.
func (s *Service) Stats() *RenderStats { return s.stats }

// selection is a request resolved against the data.
type selection struct {
	period   survey.Period
	data     *survey.Dataset // responses of the period
	all      *survey.Dataset
	question *survey.Question
}

func (s *Service) dataset(ctx context.Context) (*survey.Dataset, error) {
	sheet, err := s.src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}
	d, err := survey.NewDataset(sheet, s.opts.Layout)
	if err != nil {
		return nil, err
	}
	if d.Dropped > 0 {
		s.log.Debug("dropped undated responses", "count", d.Dropped)
	}
	first, last := d.Span()
	s.log.Debug("responses loaded", "count", d.Len(), "first", first, "last", last)
	return d, nil
}

// Refresh drops cached responses so the next request reloads them. It
// reports whether the source keeps a cache.
func (s *Service) Refresh() bool {
	c, ok := s.src.(interface{ Invalidate() })
	if ok {
		c.Invalidate()
		s.log.Info("response cache invalidated")
	}
	return ok
}

func (s *Service) selectData(ctx context.Context, req Request) (*selection, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	period, err := d.Resolve(req.Year, req.Month, s.opts.Now())
	if err != nil {
		return nil, err
	}
	sel := &selection{period: period, data: d.Filter(period), all: d}
	if sel.data.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", survey.ErrNoData, period)
	}
	if !req.allQuestions() {
		q, err := sel.data.Question(req.Question)
		if err != nil {
			return nil, err
		}
		sel.question = &q
	}
	return sel, nil
}

// PeriodList is the period selector state.
type PeriodList struct {
	Periods []survey.Period `json:"periods"`
	Default survey.Period   `json:"default"`
}

// Periods lists the months with responses and the period selected when the
// request names none.
func (s *Service) Periods(ctx context.Context) (*PeriodList, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	def, err := d.Resolve(0, 0, s.opts.Now())
	if err != nil {
		return nil, err
	}
	return &PeriodList{Periods: d.Periods(), Default: def}, nil
}

// Questions lists the selectable questions.
func (s *Service) Questions(ctx context.Context) ([]survey.Question, error) {
	d, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return d.Questions(), nil
}

// Summary is the aggregated view of one request.
type Summary struct {
	Period      survey.Period        `json:"period"`
	Responses   int                  `json:"responses"`
	Question    *survey.Question     `json:"question,omitempty"`
	Counts      []summary.Count      `json:"counts,omitempty"`
	Indicator   *summary.Indicator   `json:"indicator,omitempty"`
	Areas       *summary.AreaSummary `json:"areas,omitempty"`
	Suggestions []string             `json:"suggestions,omitempty"`
}

func (s *Service) Summary(ctx context.Context, req Request) (*Summary, error) {
	sel, err := s.selectData(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.summarize(sel), nil
}

func (s *Service) summarize(sel *selection) *Summary {
	out := &Summary{Period: sel.period, Responses: sel.data.Len(), Question: sel.question}
	if sel.question != nil {
		out.Counts = summary.Counts(sel.data.Values(sel.question.Column))
		ind := summary.Indicators(out.Counts)
		out.Indicator = &ind
		return out
	}
	out.Areas = summary.Areas(sel.data, sel.data.Questions(), s.opts.Layout.ExpectedAnswers)
	out.Suggestions = sel.data.Suggestions()
	return out
}

func positiveLine(ind *summary.Indicator) string {
	return fmt.Sprintf("Avaliações positivas: %d de %d (%s)",
		ind.Positive, ind.Total, summary.FormatPercent(ind.PositivePercent))
}

// overallCounts pools the answers of every question.
func overallCounts(d *survey.Dataset) []summary.Count {
	var values []string
	for _, q := range d.Questions() {
		values = append(values, d.Values(q.Column)...)
	}
	return summary.Counts(values)
}

func (s *Service) observe(format string, sel *selection, start time.Time, attrs ...any) {
	elapsed := time.Since(start)
	s.stats.Record(format, elapsed)
	attrs = append(attrs,
		"format", format,
		"period", sel.period.String(),
		"responses", sel.data.Len(),
		"duration_ms", elapsed.Milliseconds(),
	)
	if sel.question != nil {
		attrs = append(attrs, "question", sel.question.Area)
	}
	s.log.Info("report rendered", attrs...)
}

// PDF renders the report. With every question selected it holds the
// paginated area summary followed by one chart per area; with one question,
// its chart and counts table.
// Both end with the signature block.
func (s *Service) PDF(ctx context.Context, req Request) (*File, error) {
	sel, err := s.selectData(ctx, req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	sum := s.summarize(sel)

	opts := s.opts.Report
	opts.CreatedAt = s.opts.Now()
	opts.ReportID = uuid.NewString()
	doc := report.NewDocument(opts)

	var layout *report.Layout
	if sel.question == nil {
		doc.Chapter(fmt.Sprintf("Resumo de Áreas Atendidas - %s", sel.period))
		doc.Paragraph(fmt.Sprintf("Total de respostas: %d", sum.Responses))
		layout, err = doc.Table(sum.Areas.Table())
		if err == nil {
			err = s.areaCharts(doc, sel.data, opts.ReportID)
		}
	} else {
		doc.Chapter(sel.question.Title)
		doc.Paragraph(positiveLine(sum.Indicator))
		img, cerr := chart.Bars("Respostas de "+sel.question.Area, sum.Counts)
		if cerr != nil {
			return nil, cerr
		}
		if err := doc.Image("chart-"+opts.ReportID, img, chartWidth); err != nil {
			return nil, err
		}
		layout, err = doc.FixedTable(summary.CountsTable(sum.Counts))
	}
	if err != nil {
		return nil, fmt.Errorf("lay out table: %w", err)
	}
	if layout.Overflow {
		s.log.Warn("table rows exceed the page", "report_id", opts.ReportID)
	}
	if clipped := layout.ClippedRows(); len(clipped) > 0 {
		s.log.Warn("table labels clipped to fit the page", "report_id", opts.ReportID, "rows", clipped)
	}
	doc.Signature()

	data, err := doc.Bytes()
	if err != nil {
		return nil, err
	}
	s.observe("pdf", sel, start, "report_id", opts.ReportID, "pages", doc.PageCount())
	return &File{Name: export.ReportFileName(sel.period), ContentType: ContentTypePDF, Data: data}, nil
}

// areaCharts adds a chapter with the answer chart of every area that has
// answers in the period.
func (s *Service) areaCharts(doc *report.Document, d *survey.Dataset, reportID string) error {
	for i, q := range d.Questions() {
		img, err := chart.Bars("Respostas de "+q.Area, summary.Counts(d.Values(q.Column)))
		if errors.Is(err, chart.ErrEmpty) {
			continue
		}
		if err != nil {
			return err
		}
		doc.Chapter(q.Area)
		if err := doc.Image(fmt.Sprintf("chart-%s-%d", reportID, i), img, chartWidth); err != nil {
			return err
		}
	}
	return nil
}

// XLSX exports the area summary, or the counts of a single question.
func (s *Service) XLSX(ctx context.Context, req Request) (*File, error) {
	sel, err := s.selectData(ctx, req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	sum := s.summarize(sel)

	var (
		name string
		data []byte
	)
	if sel.question == nil {
		name = export.AreasFileName(sel.period)
		data, err = export.XLSX(sum.Areas.Columns(), sum.Areas.Records())
	} else {
		name = export.CountsFileName
		data, err = export.XLSX(summary.CountsColumns(), summary.CountsRecords(sum.Counts))
	}
	if err != nil {
		return nil, err
	}
	s.observe("xlsx", sel, start)
	return &File{Name: name, ContentType: ContentTypeXLSX, Data: data}, nil
}

// DOCX renders the same tables as the PDF as a Word document.
func (s *Service) DOCX(ctx context.Context, req Request) (*File, error) {
	sel, err := s.selectData(ctx, req)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	sum := s.summarize(sel)

	var data []byte
	if sel.question == nil {
		data, err = export.DOCX(
			fmt.Sprintf("Resumo de Áreas Atendidas - %s", sel.period),
			sum.Areas.Table(),
			fmt.Sprintf("Total de respostas: %d", sum.Responses),
		)
	} else {
		data, err = export.DOCX(
			sel.question.Title,
			summary.CountsTable(sum.Counts),
			fmt.Sprintf("Período: %s", sel.period),
			positiveLine(sum.Indicator),
		)
	}
	if err != nil {
		return nil, err
	}
	s.observe("docx", sel, start)
	return &File{Name: export.DocumentFileName(sel.period), ContentType: ContentTypeDOCX, Data: data}, nil
}

// Chart draws the selected question's answers, or the answers of every
// question pooled together.
func (s *Service) Chart(ctx context.Context, req Request) (*File, error) {
	sel, err := s.selectData(ctx, req)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	title := fmt.Sprintf("%s - %s", AllQuestions, sel.period)
	var counts []summary.Count
	if sel.question == nil {
		counts = overallCounts(sel.data)
	} else {
		title = "Respostas de " + sel.question.Area
		counts = summary.Counts(sel.data.Values(sel.question.Column))
	}
	data, err := chart.Bars(title, counts)
	if err != nil {
		return nil, err
	}
	s.observe("png", sel, start)
	return &File{Name: "grafico.png", ContentType: ContentTypePNG, Data: data}, nil
}
