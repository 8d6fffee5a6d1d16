package printing

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	ledgerapp "github.com/parcelhub/backend/internal/application/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverter struct {
	html   string
	err    error
	closed bool
}

func (f *fakeConverter) Convert(_ context.Context, html string) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func (f *fakeConverter) Close() error {
	f.closed = true
	return nil
}

func sampleReport() *ledgerapp.DebtReport {
	created := time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC)
	paid := created.Add(48 * time.Hour)
	parcel := "PCL-1001"
	branchID := int64(1)
	return &ledgerapp.DebtReport{
		GeneratedAt: created.Add(72 * time.Hour),
		BranchID:    &branchID,
		BranchName:  "Cairo Hub",
		Rows: []ledgerapp.DebtResponse{
			{
				ID:                uuid.MustParse("11111111-1111-1111-1111-111111111111"),
				DebtorType:        "BRANCH",
				DebtorID:          "2",
				DebtorName:        "Giza",
				CounterpartName:   "Giza",
				BranchName:        "Cairo Hub",
				Amount:            decimal.NewFromInt(5000),
				MovementType:      "DEBTOR",
				MovementLabelText: "Creditor (owed to us)",
				Notes:             "transfer, week 14",
				Status:            "OUTSTANDING",
				CreatedAt:         created,
			},
			{
				ID:                uuid.MustParse("22222222-2222-2222-2222-222222222222"),
				DebtorType:        "CUSTOMER",
				DebtorID:          "C-9",
				DebtorName:        "Ali <script>",
				CounterpartName:   "Ali <script>",
				BranchName:        "Cairo Hub",
				Amount:            decimal.RequireFromString("1200.5"),
				MovementType:      "DEBTOR",
				MovementLabelText: "Debtor (owes us)",
				Notes:             "unpaid shipping",
				Status:            "PAID",
				ParcelID:          &parcel,
				CreatedAt:         created,
				PaidAt:            &paid,
			},
		},
		Totals: ledgerapp.DebtReportTotals{
			OutstandingOwedToUs: decimal.NewFromInt(5000),
			OutstandingWeOwe:    decimal.Zero,
			Paid:                decimal.RequireFromString("1200.5"),
			Count:               2,
			OutstandingCount:    1,
		},
	}
}

func TestFormatter(t *testing.T) {
	f := NewFormatter("en", "EGP", nil)
	assert.Equal(t, "en", f.Locale())
	assert.Equal(t, "5,000.00", f.Amount(decimal.NewFromInt(5000)))
	assert.Equal(t, "EGP 1,200.50", f.Money(decimal.RequireFromString("1200.5")))
	assert.Equal(t, "12,345", f.Count(12345))
	assert.Equal(t, "Pending Settlement", f.Label("PENDING_SETTLEMENT"))
	assert.Equal(t, "Driver", f.Label("DRIVER"))
	assert.Equal(t, "", f.OptionalDate(nil))

	fallback := NewFormatter("not a locale!", "", nil)
	assert.Equal(t, "en", fallback.Locale())
	assert.Equal(t, "10.00", fallback.Money(decimal.NewFromInt(10)))

	cairo, err := time.LoadLocation("Africa/Cairo")
	if err == nil {
		local := NewFormatter("en", "", cairo)
		assert.Equal(t, "2026-04-11", local.Date(time.Date(2026, 4, 10, 23, 30, 0, 0, time.UTC)))
	}
}

func TestRenderCSV(t *testing.T) {
	r, err := NewReportRenderer(nil, nil, nil)
	require.NoError(t, err)

	body, contentType, err := r.Render(context.Background(), sampleReport(), ledgerapp.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeCSV, contentType)

	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])

	first := records[1]
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", first[0])
	assert.Equal(t, "5000.00", first[7])
	assert.Equal(t, "transfer, week 14", first[10])
	assert.Empty(t, first[12])

	second := records[2]
	assert.Equal(t, "1200.50", second[7])
	assert.Equal(t, "PCL-1001", second[9])
	assert.Equal(t, "2026-04-12T09:30:00Z", second[12])
}

func TestRenderPDF_UsesStatementHTML(t *testing.T) {
	conv := &fakeConverter{}
	r, err := NewReportRenderer(NewFormatter("en", "EGP", nil), conv, nil)
	require.NoError(t, err)

	body, contentType, err := r.Render(context.Background(), sampleReport(), ledgerapp.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, ContentTypePDF, contentType)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	html := conv.html
	assert.Contains(t, html, "Debt statement - Cairo Hub")
	assert.Contains(t, html, "EGP 5,000.00")
	assert.Contains(t, html, "Creditor (owed to us)")
	assert.Contains(t, html, `class="paid"`)
	assert.Contains(t, html, "Ali &lt;script&gt;")
	assert.NotContains(t, html, "Ali <script>")
	assert.Contains(t, html, "2026-04-12")

	require.NoError(t, r.Close())
	assert.True(t, conv.closed)
}

func TestRenderHTML_EmptyReport(t *testing.T) {
	r, err := NewReportRenderer(nil, nil, nil)
	require.NoError(t, err)

	html, err := r.RenderHTML(&ledgerapp.DebtReport{GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.Contains(t, html, "No debts match this report.")
	assert.NotContains(t, html, "Debt statement -")
}

func TestRender_Errors(t *testing.T) {
	r, err := NewReportRenderer(nil, nil, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = r.Render(ctx, nil, ledgerapp.ExportFormatCSV)
	require.Error(t, err)

	_, _, err = r.Render(ctx, sampleReport(), "xlsx")
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeUnsupportedFormat, renderErr.Code)

	_, _, err = r.Render(ctx, sampleReport(), ledgerapp.ExportFormatPDF)
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeUnsupportedFormat, renderErr.Code)

	failing := &fakeConverter{err: errors.New("browser crashed")}
	r, err = NewReportRenderer(nil, failing, nil)
	require.NoError(t, err)
	_, _, err = r.Render(ctx, sampleReport(), ledgerapp.ExportFormatPDF)
	assert.EqualError(t, err, "browser crashed")
	assert.NoError(t, (&ReportRenderer{}).Close())
}

func TestCountPages(t *testing.T) {
	pdf := []byte("<< /Type /Pages /Count 2 >> << /Type /Page >> << /Type /Page >>")
	assert.Equal(t, 2, countPages(pdf))
	assert.Equal(t, 1, countPages([]byte("garbage")))
}

func TestChromedpConverter_EmptyHTML(t *testing.T) {
	c := NewChromedpConverter(ChromedpConfig{})
	defer c.Close()

	_, err := c.Convert(context.Background(), "   ")
	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
}

func findChrome() string {
	for _, name := range []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

func TestChromedpConverter_PrintsStatement(t *testing.T) {
	chrome := findChrome()
	if testing.Short() || chrome == "" {
		t.Skip("no Chrome binary available")
	}
	conv := NewChromedpConverter(ChromedpConfig{ExecPath: chrome, NoSandbox: true, Landscape: true, Timeout: time.Minute})
	r, err := NewReportRenderer(NewFormatter("en", "EGP", nil), conv, nil)
	require.NoError(t, err)
	defer r.Close()

	body, _, err := r.Render(context.Background(), sampleReport(), ledgerapp.ExportFormatPDF)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))
}
