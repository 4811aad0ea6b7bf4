package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/feedbackdash/internal/report"
)

// Source kinds.
const (
	SourceSheets   = "sheets"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

type Config struct {
	Port string

	// Auth; empty disables it.
	DashAPIKey string

	// Response source
	Source         string
	SheetURL       string
	SheetName      string
	SourceFile     string
	DatabaseURL    string
	SourceTable    string
	SourceCacheTTL time.Duration
	LayoutFile     string

	// Report
	LogoPath        string
	ReportTitle     string
	SignatureName   string
	SignatureRole   string
	PDFOrientation  string
	PDFLabelWidth   float64
	PDFLineHeight   float64
	PDFBottomMargin float64
	PDFOverflow     report.OverflowPolicy
	PDFOverflowRaw  string // PDF_OVERFLOW as set; Load falls back to clip, Validate rejects it
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DashAPIKey: os.Getenv("DASH_API_KEY"),

		Source:         strings.ToLower(envOr("SOURCE", SourceSheets)),
		SheetURL:       os.Getenv("SHEET_URL"),
		SheetName:      os.Getenv("SHEET_NAME"), // empty selects the first worksheet
		SourceFile:     os.Getenv("SOURCE_FILE"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SourceTable:    envOr("SOURCE_TABLE", "respostas"),
		SourceCacheTTL: envDuration("SOURCE_CACHE_TTL", 5*time.Minute),
		LayoutFile:     os.Getenv("LAYOUT_FILE"),

		LogoPath:        envOr("LOGO_PATH", "logo.png"),
		ReportTitle:     envOr("REPORT_TITLE", "Relatório de Satisfação dos Pacientes"),
		SignatureName:   os.Getenv("SIGNATURE_NAME"),
		SignatureRole:   os.Getenv("SIGNATURE_ROLE"),
		PDFOrientation:  strings.ToUpper(envOr("PDF_ORIENTATION", "L")),
		PDFLabelWidth:   envFloat("PDF_LABEL_WIDTH", 30),
		PDFLineHeight:   envFloat("PDF_LINE_HEIGHT", 6),
		PDFBottomMargin: envFloat("PDF_BOTTOM_MARGIN", 30),
	}

	cfg.PDFOverflowRaw = os.Getenv("PDF_OVERFLOW")
	overflow, err := report.ParseOverflowPolicy(cfg.PDFOverflowRaw)
	if err != nil {
		overflow = report.OverflowClip
	}
	cfg.PDFOverflow = overflow

	if cfg.SourceCacheTTL < 0 {
		cfg.SourceCacheTTL = 5 * time.Minute
	}
	if cfg.PDFLabelWidth <= 0 {
		cfg.PDFLabelWidth = 30
	}
	if cfg.PDFLineHeight <= 0 {
		cfg.PDFLineHeight = 6
	}
	if cfg.PDFBottomMargin <= 0 {
		cfg.PDFBottomMargin = 30
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.Source {
	case SourceSheets:
		if c.SheetURL == "" {
			return fmt.Errorf("SHEET_URL is required when SOURCE=sheets")
		}
	case SourceFile:
		if c.SourceFile == "" {
			return fmt.Errorf("SOURCE_FILE is required when SOURCE=file")
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when SOURCE=postgres")
		}
	default:
		return fmt.Errorf("SOURCE must be one of sheets, file, postgres; got %q", c.Source)
	}
	if c.PDFOrientation != "L" && c.PDFOrientation != "P" {
		return fmt.Errorf("PDF_ORIENTATION must be L or P, got %q", c.PDFOrientation)
	}
	if c.PDFOverflowRaw != "" {
		if _, err := report.ParseOverflowPolicy(c.PDFOverflowRaw); err != nil {
			return fmt.Errorf("PDF_OVERFLOW: %w", err)
		}
	}
	return nil
}

// ReportOptions builds the PDF settings.
func (c Config) ReportOptions() report.Options {
	layout := report.DefaultConfig()
	layout.LabelWidth = c.PDFLabelWidth
	layout.LineHeight = c.PDFLineHeight
	layout.Overflow = c.PDFOverflow

	return report.Options{
		Orientation:  c.PDFOrientation,
		Title:        c.ReportTitle,
		LogoPath:     c.LogoPath,
		Signature:    report.Signature{Name: c.SignatureName, Role: c.SignatureRole},
		Layout:       layout,
		BottomMargin: c.PDFBottomMargin,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
