package survey

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestReadCSV_RaggedRowsAndBlankLines(t *testing.T) {
	in := "\n\"Carimbo de data/hora\",Pergunta\n,\n15/03/2025,Bom,extra\n16/03/2025\n"
	sheet, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(sheet.Header) != 2 || sheet.Header[0] != "Carimbo de data/hora" {
		t.Errorf("unexpected header %q", sheet.Header)
	}
	if len(sheet.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sheet.Records))
	}
	if sheet.Cell(1, 1) != "" {
		t.Errorf("short record should read blank, got %q", sheet.Cell(1, 1))
	}
}

func TestReadCSV_Empty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); !errors.Is(err, ErrEmptySheet) {
		t.Errorf("expected ErrEmptySheet, got %v", err)
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Respostas ao formulário 1"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	f.SetSheetRow(sheet, "A1", &[]any{"Carimbo de data/hora", "Nome", "Serviço Social"})
	f.SetSheetRow(sheet, "A2", &[]any{"15/03/2025 10:00:00", "Ana", "Excelente"})
	f.SetSheetRow(sheet, "A3", &[]any{45731.5, "Bruno", "Bom"})
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	got, err := ReadXLSX(buf, "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got.Records) != 2 || got.Cell(1, 2) != "Bom" {
		t.Fatalf("unexpected sheet %+v", got)
	}
	d, err := NewDataset(got, DefaultLayout())
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	if d.Len() != 2 || d.Dropped != 0 {
		t.Errorf("expected both rows dated, got %d (dropped %d)", d.Len(), d.Dropped)
	}
}

func TestReadXLSX_UnknownSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	if _, err := ReadXLSX(buf, "nope"); err == nil {
		t.Error("expected an error for a missing worksheet")
	}
}

func TestReadHTML(t *testing.T) {
	page := `<html><head><title>Respostas</title></head><body>
<table>
<thead><tr><th>Carimbo de data/hora</th><th>Serviço Social</th></tr></thead>
<tbody>
<tr><td>15/03/2025 10:00:00</td><td><b>Excelente</b></td></tr>
<tr><td></td><td></td></tr>
<tr><td>16/03/2025 10:00:00</td><td>Bom<table><tr><td>nested</td></tr></table></td></tr>
</tbody></table></body></html>`
	sheet, err := ReadHTML(strings.NewReader(page))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(sheet.Header) != 2 || sheet.Header[1] != "Serviço Social" {
		t.Errorf("unexpected header %q", sheet.Header)
	}
	if len(sheet.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sheet.Records))
	}
	if sheet.Cell(0, 1) != "Excelente" {
		t.Errorf("unexpected cell %q", sheet.Cell(0, 1))
	}
}

// sheetsExportHTML is the shape of a Google Sheets "Download > Web page"
// export: a column letter row and a row-number <th> on every row.
const sheetsExportHTML = `<meta http-equiv="Content-Type" content="text/html; charset=utf-8"><link type="text/css" rel="stylesheet" href="resources/sheet.css" >
<style type="text/css">.ritz .waffle a { color: inherit; }.ritz .waffle .s0{background-color:#ffffff;text-align:left;}</style>
<div class="ritz grid-container" dir="ltr"><table class="waffle" cellspacing="0" cellpadding="0"><thead><tr><th class="row-header freezebar-origin-ltr"></th><th id="1437245283C0" style="width:152px;" class="column-headers-background">A</th><th id="1437245283C1" style="width:100px;" class="column-headers-background">B</th><th id="1437245283C2" style="width:171px;" class="column-headers-background">C</th><th id="1437245283C3" style="width:161px;" class="column-headers-background">D</th></tr></thead><tbody><tr style="height: 20px"><th id="1437245283R0" style="height: 20px;" class="row-headers-background"><div class="row-header-wrapper" style="line-height: 20px">1</div></th><td class="s0" dir="ltr">Carimbo de data/hora</td><td class="s0" dir="ltr">Nome</td><td class="s0" dir="ltr">Como avalia o Serviço Social?</td><td class="s0" dir="ltr">Deixe sua Sugestão:</td></tr><tr style="height: 20px"><th id="1437245283R1" style="height: 20px;" class="row-headers-background"><div class="row-header-wrapper" style="line-height: 20px">2</div></th><td class="s1" dir="ltr">15/03/2025 10:00:00</td><td class="s1" dir="ltr">Ana</td><td class="s1" dir="ltr">Excelente</td><td class="s1"></td></tr><tr style="height: 20px"><th id="1437245283R2" style="height: 20px;" class="row-headers-background"><div class="row-header-wrapper" style="line-height: 20px">3</div></th><td class="s1" dir="ltr">16/03/2025 11:30:00</td><td class="s1" dir="ltr">Bruno</td><td class="s1" dir="ltr">Bom</td><td class="s1" dir="ltr">Mais horários</td></tr><tr style="height: 20px"><th id="1437245283R3" style="height: 20px;" class="row-headers-background"><div class="row-header-wrapper" style="line-height: 20px">4</div></th><td class="s1"></td><td class="s1"></td><td class="s1"></td><td class="s1"></td></tr></tbody></table></div>`

func TestReadHTML_SheetsExport(t *testing.T) {
	sheet, err := ReadHTML(strings.NewReader(sheetsExportHTML))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(sheet.Header) != 4 || sheet.Header[0] != "Carimbo de data/hora" || sheet.Header[3] != "Deixe sua Sugestão:" {
		t.Fatalf("unexpected header %q", sheet.Header)
	}
	if len(sheet.Records) != 2 {
		t.Fatalf("expected 2 records, got %d: %q", len(sheet.Records), sheet.Records)
	}
	if sheet.Cell(1, 1) != "Bruno" {
		t.Errorf("row numbers were not dropped: %q", sheet.Records[1])
	}

	ds, err := NewDataset(sheet, DefaultLayout())
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("expected 2 responses, got %d", ds.Len())
	}
}

func TestReadHTML_ColumnLettersWithoutWaffleClass(t *testing.T) {
	page := `<table><tr><th></th><th>A</th><th>B</th></tr>
<tr><th>1</th><td>Carimbo de data/hora</td><td>Nutrição</td></tr>
<tr><th>2</th><td>15/03/2025 10:00:00</td><td>Bom</td></tr></table>`
	sheet, err := ReadHTML(strings.NewReader(page))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(sheet.Header) != 2 || sheet.Header[1] != "Nutrição" {
		t.Fatalf("unexpected header %q", sheet.Header)
	}
	if sheet.Cell(0, 0) != "15/03/2025 10:00:00" {
		t.Errorf("unexpected cell %q", sheet.Cell(0, 0))
	}
}

func TestReadHTML_NoTable(t *testing.T) {
	_, err := ReadHTML(strings.NewReader("<html><head><title>Fazer login</title></head><body></body></html>"))
	if !errors.Is(err, ErrEmptySheet) || !strings.Contains(err.Error(), "Fazer login") {
		t.Errorf("expected ErrEmptySheet naming the page, got %v", err)
	}
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "respostas.CSV")
	if err := os.WriteFile(path, []byte(formCSV), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	src, err := OpenFile(path, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := src.(*CSVSource); !ok {
		t.Errorf("expected a CSV source, got %T", src)
	}
	sheet, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sheet.Records) != 6 {
		t.Errorf("expected 6 records, got %d", len(sheet.Records))
	}

	for _, name := range []string{"a.xlsx", "a.htm", "a.html"} {
		if _, err := OpenFile(name, ""); err != nil {
			t.Errorf("OpenFile(%q): %v", name, err)
		}
	}
	if _, err := OpenFile("a.ods", ""); !errors.Is(err, ErrUnsupportedInput) {
		t.Errorf("expected ErrUnsupportedInput, got %v", err)
	}
}

func TestExportURL(t *testing.T) {
	got, err := ExportURL("https://docs.google.com/spreadsheets/d/abc123/edit?usp=sharing", "Respostas ao formulário 1")
	if err != nil {
		t.Fatalf("export url: %v", err)
	}
	want := "https://docs.google.com/spreadsheets/d/abc123/gviz/tq?sheet=Respostas+ao+formul%C3%A1rio+1&tqx=out%3Acsv"
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}

	direct := "http://localhost:9999/export.csv"
	if got, _ := ExportURL(direct, "x"); got != direct {
		t.Errorf("non-spreadsheet url should pass through, got %s", got)
	}
}

func noBackoff(int) time.Duration { return 0 }

func TestSheetsSource_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Write([]byte(formCSV))
	}))
	defer srv.Close()

	src := &SheetsSource{URL: srv.URL + "/export.csv", Client: srv.Client(), Backoff: noBackoff}
	sheet, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
	if len(sheet.Records) != 6 {
		t.Errorf("expected 6 records, got %d", len(sheet.Records))
	}
}

func TestSheetsSource_RetriesDroppedConnections(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err != nil {
				t.Errorf("hijack: %v", err)
				return
			}
			conn.Close()
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Write([]byte(formCSV))
	}))
	defer srv.Close()

	src := &SheetsSource{URL: srv.URL + "/export.csv", Client: srv.Client(), Backoff: noBackoff}
	sheet, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
	if len(sheet.Records) != 6 {
		t.Errorf("expected 6 records, got %d", len(sheet.Records))
	}
}

func TestSheetsSource_CancelledRequestIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		cancel()
		<-r.Context().Done()
	}))
	defer srv.Close()

	src := &SheetsSource{URL: srv.URL, Client: srv.Client(), Backoff: noBackoff}
	if _, err := src.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestSheetsSource_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := &SheetsSource{URL: srv.URL, Client: srv.Client(), Backoff: noBackoff}
	_, err := src.Load(context.Background())
	if !IsRetryable(err) {
		t.Fatalf("expected the last retryable error, got %v", err)
	}
	if int(calls.Load()) != MaxRetries+1 {
		t.Errorf("expected %d calls, got %d", MaxRetries+1, calls.Load())
	}
}

func TestSheetsSource_LoginPage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><head><title>Google Sheets: Sign-in</title></head></html>"))
	}))
	defer srv.Close()

	src := &SheetsSource{URL: srv.URL, Client: srv.Client(), Backoff: noBackoff}
	_, err := src.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Google Sheets: Sign-in") {
		t.Fatalf("expected the login page title in the error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("login pages must not be retried, got %d calls", calls.Load())
	}
}

func TestSheetsSource_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := &SheetsSource{URL: srv.URL, Client: srv.Client(), Backoff: noBackoff}
	if _, err := src.Load(context.Background()); err == nil || IsRetryable(err) {
		t.Fatalf("expected a permanent error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestSheetsSource_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	src := &SheetsSource{URL: srv.URL, Client: srv.Client(), Backoff: func(int) time.Duration {
		cancel()
		return time.Hour
	}}
	if _, err := src.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff_Bounds(t *testing.T) {
	for attempt := range 8 {
		d := Backoff(attempt)
		base := time.Duration(1<<uint(attempt)) * time.Second
		if base > 30*time.Second {
			base = 30 * time.Second
		}
		if d < base || d >= base+base/2 {
			t.Errorf("Backoff(%d) = %v, outside [%v, %v)", attempt, d, base, base+base/2)
		}
	}
}

func TestSelectAllQuery(t *testing.T) {
	got, err := selectAllQuery("forms.respostas")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if got != `SELECT * FROM "forms"."respostas"` {
		t.Errorf("unexpected query %s", got)
	}
	got, _ = selectAllQuery(`bad"name`)
	if got != `SELECT * FROM "bad""name"` {
		t.Errorf("identifier not escaped: %s", got)
	}
	if _, err := selectAllQuery(" "); err == nil {
		t.Error("expected an error for an empty table")
	}
}
