package textextract

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bills-tracker/constants"
	"github.com/joseph-ayodele/bills-tracker/internal/common"
)

type stubStrategy struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(context.Context, []byte) (string, error) {
	s.calls++
	return s.text, s.err
}

var pdfBytes = []byte("%PDF-1.4\n...")

func TestExtractUsesPrimaryWhenItYieldsText(t *testing.T) {
	primary := &stubStrategy{name: "primary", text: "TOTAL $ 1.234,56"}
	fallback := &stubStrategy{name: "fallback", text: "unused"}
	e := NewExtractorWithStrategies(primary, fallback, &stubStrategy{name: "img"}, 0, nil)

	res, err := e.Extract(context.Background(), pdfBytes, "bill.pdf")
	require.NoError(t, err)
	assert.Equal(t, "TOTAL $ 1.234,56", res.Text)
	assert.Equal(t, "primary", res.Method)
	assert.Equal(t, constants.PDF, res.SourceType)
	assert.Zero(t, fallback.calls)
}

func TestExtractFallsBackOnEmptyPrimary(t *testing.T) {
	primary := &stubStrategy{name: "primary", text: "  \n\t "}
	fallback := &stubStrategy{name: "fallback", text: "from fallback"}
	e := NewExtractorWithStrategies(primary, fallback, &stubStrategy{name: "img"}, 0, nil)

	res, err := e.Extract(context.Background(), pdfBytes, "bill.pdf")
	require.NoError(t, err)
	assert.Equal(t, "from fallback", res.Text)
	assert.Equal(t, "fallback", res.Method)
	assert.Len(t, res.Warnings, 1)
}

func TestExtractFallsBackOnPrimaryError(t *testing.T) {
	primary := &stubStrategy{name: "primary", err: errors.New("bad xref")}
	fallback := &stubStrategy{name: "fallback", text: "ok"}
	e := NewExtractorWithStrategies(primary, fallback, &stubStrategy{name: "img"}, 0, nil)

	res, err := e.Extract(context.Background(), pdfBytes, "bill.pdf")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Contains(t, res.Warnings[0], "bad xref")
}

func TestExtractFailsWhenBothStrategiesFail(t *testing.T) {
	primary := &stubStrategy{name: "primary", err: errors.New("bad xref")}
	fallback := &stubStrategy{name: "fallback", err: errors.New("pdftotext missing")}
	e := NewExtractorWithStrategies(primary, fallback, &stubStrategy{name: "img"}, 0, nil)

	_, err := e.Extract(context.Background(), pdfBytes, "bill.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtraction)
	assert.Contains(t, err.Error(), "bad xref")
	assert.Contains(t, err.Error(), "pdftotext missing")
}

func TestExtractRoutesImages(t *testing.T) {
	img := &stubStrategy{name: "img", text: "EDESUR"}
	primary := &stubStrategy{name: "primary"}
	e := NewExtractorWithStrategies(primary, &stubStrategy{name: "fallback"}, img, 0, nil)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	res, err := e.Extract(context.Background(), png, "scan.png")
	require.NoError(t, err)
	assert.Equal(t, "EDESUR", res.Text)
	assert.Equal(t, constants.IMAGE, res.SourceType)
	assert.Zero(t, primary.calls)
}

func TestExtractRejectsEmptyInput(t *testing.T) {
	e := NewExtractorWithStrategies(&stubStrategy{}, &stubStrategy{}, &stubStrategy{}, 0, nil)
	_, err := e.Extract(context.Background(), nil, "bill.pdf")
	assert.ErrorIs(t, err, common.ErrExtraction)
}

type recordingRunner struct {
	name    string
	args    []string
	content []byte
	out     []byte
	err     error
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.name, r.args = name, args
	// the temp file must exist while the command runs
	for _, a := range args {
		if b, err := os.ReadFile(a); err == nil {
			r.content = b
		}
	}
	return r.out, []byte("stderr"), r.err
}

func TestCommandPDF(t *testing.T) {
	runner := &recordingRunner{out: []byte("Edesur\f\r\nTOTAL   $ 100\n\n\n\nVencimiento")}
	text, err := CommandPDF{Runner: runner}.Extract(context.Background(), pdfBytes)
	require.NoError(t, err)

	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}, runner.args[:5])
	assert.Equal(t, "-", runner.args[len(runner.args)-1])
	assert.Equal(t, pdfBytes, runner.content)
	assert.Equal(t, "Edesur\n\nTOTAL $ 100\n\nVencimiento", text)
}

func TestImageOCRArgs(t *testing.T) {
	runner := &recordingRunner{out: []byte("AySA\n-----\nTotal 10")}
	text, err := ImageOCR{Runner: runner, TessdataDir: "/td"}.Extract(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "tesseract", runner.name)
	assert.Equal(t, []string{"stdout", "-l", "spa+eng", "--tessdata-dir", "/td"}, runner.args[1:])
	assert.Equal(t, "AySA\n\nTotal 10", text)
}

func TestStructuredPDFRejectsGarbage(t *testing.T) {
	_, err := StructuredPDF{}.Extract(context.Background(), []byte("definitely not a pdf"))
	assert.Error(t, err)
}

func TestJoinRuns(t *testing.T) {
	runs := []pdf.Text{
		{S: "TO", X: 10, W: 10, FontSize: 10},
		{S: "TAL", X: 20, W: 15, FontSize: 10},
		{S: "%24", X: 50, W: 5, FontSize: 10},
		{S: "21%", X: 60, W: 10, FontSize: 10},
	}
	assert.Equal(t, "TOTAL $ 21%", joinRuns(runs))
}
