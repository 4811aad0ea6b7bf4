// Command satisreport renders the patient satisfaction reports from the
// command line, reading the same environment as the server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/feedbackdash/internal/config"
	"github.com/dgallion1/feedbackdash/internal/dashboard"
	"github.com/dgallion1/feedbackdash/internal/survey"
)

type rootFlags struct {
	source    string
	file      string
	sheetURL  string
	sheetName string
	layout    string
	verbose   bool

	year     int
	month    string
	question string
	out      string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:          "satisreport",
		Short:        "Render patient satisfaction reports",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.source, "source", "", "response source: sheets, file or postgres (default $SOURCE)")
	pf.StringVar(&f.file, "file", "", "exported sheet file (.csv, .xlsx, .html); implies --source=file")
	pf.StringVar(&f.sheetURL, "sheet-url", "", "spreadsheet URL (default $SHEET_URL)")
	pf.StringVar(&f.sheetName, "sheet-name", "", "worksheet name (default $SHEET_NAME)")
	pf.StringVar(&f.layout, "layout", "", "YAML form layout (default $LAYOUT_FILE)")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "log progress to stderr")
	pf.IntVar(&f.year, "year", 0, "report year (default: the month 30 days ago)")
	pf.StringVar(&f.month, "month", "", "report month, as a number or Portuguese name")
	pf.StringVar(&f.question, "question", "", "question title or area; empty selects every question")

	root.AddCommand(
		newRenderCommand(f, "pdf", "Render the PDF report", (*dashboard.Service).PDF),
		newRenderCommand(f, "xlsx", "Export the summary as an Excel workbook", (*dashboard.Service).XLSX),
		newRenderCommand(f, "docx", "Render the report as a Word document", (*dashboard.Service).DOCX),
		newRenderCommand(f, "chart", "Draw the answers bar chart as PNG", (*dashboard.Service).Chart),
		newSummaryCommand(f),
		newPeriodsCommand(f),
		newQuestionsCommand(f),
	)
	return root
}

// service builds a dashboard from the environment with flag overrides.
func (f *rootFlags) service(ctx context.Context) (*dashboard.Service, func() error, error) {
	cfg := config.Load()
	if f.source != "" {
		cfg.Source = f.source
	}
	if f.file != "" {
		cfg.Source = config.SourceFile
		cfg.SourceFile = f.file
	}
	if f.sheetURL != "" {
		cfg.SheetURL = f.sheetURL
	}
	if f.sheetName != "" {
		cfg.SheetName = f.sheetName
	}
	if f.layout != "" {
		cfg.LayoutFile = f.layout
	}
	// One run loads the data once.
	cfg.SourceCacheTTL = 0

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	layout, err := survey.LoadLayout(cfg.LayoutFile)
	if err != nil {
		return nil, nil, err
	}
	src, closeFn, err := cfg.OpenSource(ctx, log)
	if err != nil {
		return nil, nil, err
	}
	svc := dashboard.NewService(src, dashboard.Options{Layout: layout, Report: cfg.ReportOptions()}, log)
	return svc, closeFn, nil
}

func (f *rootFlags) request() (dashboard.Request, error) {
	req := dashboard.Request{Year: f.year, Question: f.question}
	if f.month != "" {
		m, err := survey.ParseMonth(f.month)
		if err != nil {
			return req, err
		}
		req.Month = m
	}
	if f.year < 0 {
		return req, fmt.Errorf("%w: year %d", survey.ErrInvalidPeriod, f.year)
	}
	return req, nil
}
