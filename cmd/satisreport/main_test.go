package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const formCSV = `Carimbo de data/hora,Nome,Serviço Social,Nutrição,Deixe sua Sugestão:
15/03/2025 10:00:00,Ana,Excelente,Bom,Mais horários
02/02/2025 09:00:00,Davi,Ruim,Ruim,
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"SOURCE", "PDF_OVERFLOW", "PDF_ORIENTATION", "LAYOUT_FILE", "LOGO_PATH"} {
		t.Setenv(k, "")
	}
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeForm(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "respostas.csv")
	if err := os.WriteFile(path, []byte(formCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPeriodsCommand(t *testing.T) {
	out, err := run(t, "periods", "--file", writeForm(t))
	if err != nil {
		t.Fatalf("periods: %v", err)
	}
	if !strings.Contains(out, "2025-02 Fevereiro/2025") || !strings.Contains(out, "2025-03 Março/2025") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestPDFCommandWritesIntoDirectory(t *testing.T) {
	form := writeForm(t)
	dir := t.TempDir()
	out, err := run(t, "pdf", "--file", form, "--year", "2025", "--month", "março", "--out", dir)
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	path := filepath.Join(dir, "relatorio_marco_2025.pdf")
	if strings.TrimSpace(out) != path {
		t.Fatalf("expected the written path, got %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a pdf")
	}
}

func TestSummaryCommandToStdout(t *testing.T) {
	out, err := run(t, "summary", "--file", writeForm(t), "--year", "2025", "--month", "2", "--question", "Nutrição")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out, `"answer": "Ruim"`) {
		t.Fatalf("unexpected summary:\n%s", out)
	}
}

func TestInvalidMonth(t *testing.T) {
	if _, err := run(t, "xlsx", "--file", writeForm(t), "--month", "brumário"); err == nil {
		t.Fatal("expected an invalid month to fail")
	}
}
