// Package printing renders debt reports as CSV spreadsheets or PDF statements.
package printing

import (
	"bytes"
	"context"
	"encoding/csv"
	"html/template"
	"time"

	ledgerapp "github.com/parcelhub/backend/internal/application/ledger"
	"github.com/parcelhub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Content types returned by Render
const (
	ContentTypeCSV = "text/csv; charset=utf-8"
	ContentTypePDF = "application/pdf"
)

var csvHeader = []string{
	"id", "branch", "debtor_type", "debtor_id", "debtor_name", "counterpart",
	"direction", "amount", "status", "parcel_id", "notes", "created_at", "paid_at",
}

// ReportRenderer produces debt report documents
type ReportRenderer struct {
	format    *Formatter
	statement *template.Template
	pdf       HTMLToPDF
	logger    *zap.Logger
}

var _ ledgerapp.ReportRenderer = (*ReportRenderer)(nil)

// NewReportRenderer creates a renderer. pdf may be nil, which disables PDF output.
func NewReportRenderer(format *Formatter, pdf HTMLToPDF, logger *zap.Logger) (*ReportRenderer, error) {
	if format == nil {
		format = NewFormatter("en", "", nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl, err := parseStatementTemplate(format)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse statement template", err)
	}
	return &ReportRenderer{
		format:    format,
		statement: tmpl,
		pdf:       pdf,
		logger:    logger,
	}, nil
}

// NewReportRendererFromConfig wires the formatter and a chromedp converter from printing settings
func NewReportRendererFromConfig(cfg config.PrintingConfig, logger *zap.Logger) (*ReportRenderer, error) {
	loc := time.UTC
	if cfg.TimeZone != "" {
		l, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return nil, NewRenderError(ErrCodeTemplateFailed, "unknown report time zone "+cfg.TimeZone, err)
		}
		loc = l
	}
	converter := NewChromedpConverter(ChromedpConfig{
		ExecPath:  cfg.ChromePath,
		RemoteURL: cfg.ChromeRemoteURL,
		Timeout:   cfg.RenderTimeout,
		NoSandbox: cfg.ChromeNoSandbox,
		Landscape: true,
		Logger:    logger,
	})
	return NewReportRenderer(NewFormatter(cfg.Locale, cfg.Currency, loc), converter, logger)
}

// Render implements the application's ReportRenderer
func (r *ReportRenderer) Render(ctx context.Context, report *ledgerapp.DebtReport, format ledgerapp.ExportFormat) ([]byte, string, error) {
	if report == nil {
		return nil, "", NewRenderError(ErrCodeRenderFailed, "report is nil", nil)
	}
	switch format {
	case ledgerapp.ExportFormatCSV:
		body, err := r.RenderCSV(report)
		return body, ContentTypeCSV, err
	case ledgerapp.ExportFormatPDF:
		body, err := r.RenderPDF(ctx, report)
		return body, ContentTypePDF, err
	default:
		return nil, "", NewRenderError(ErrCodeUnsupportedFormat, "unsupported format "+string(format), nil)
	}
}

// RenderCSV writes one row per debt. Amounts stay machine readable.
func (r *ReportRenderer) RenderCSV(report *ledgerapp.DebtReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to write CSV header", err)
	}
	for _, row := range report.Rows {
		parcel := ""
		if row.ParcelID != nil {
			parcel = *row.ParcelID
		}
		record := []string{
			row.ID.String(),
			row.BranchName,
			row.DebtorType,
			row.DebtorID,
			row.DebtorName,
			row.CounterpartName,
			row.MovementLabelText,
			row.Amount.StringFixed(2),
			row.Status,
			parcel,
			row.Notes,
			row.CreatedAt.UTC().Format(time.RFC3339),
			"",
		}
		if row.PaidAt != nil {
			record[12] = row.PaidAt.UTC().Format(time.RFC3339)
		}
		if err := w.Write(record); err != nil {
			return nil, NewRenderError(ErrCodeRenderFailed, "failed to write CSV row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to flush CSV", err)
	}
	return buf.Bytes(), nil
}

// RenderHTML executes the statement template
func (r *ReportRenderer) RenderHTML(report *ledgerapp.DebtReport) (string, error) {
	var buf bytes.Buffer
	if err := r.statement.Execute(&buf, report); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute statement template", err)
	}
	return buf.String(), nil
}

// RenderPDF prints the HTML statement through the configured converter
func (r *ReportRenderer) RenderPDF(ctx context.Context, report *ledgerapp.DebtReport) ([]byte, error) {
	if r.pdf == nil {
		return nil, NewRenderError(ErrCodeUnsupportedFormat, "PDF rendering is not configured", nil)
	}
	html, err := r.RenderHTML(report)
	if err != nil {
		return nil, err
	}
	return r.pdf.Convert(ctx, html)
}

// Close releases the PDF converter
func (r *ReportRenderer) Close() error {
	if r.pdf == nil {
		return nil
	}
	return r.pdf.Close()
}
