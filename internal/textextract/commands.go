package textextract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// CommandPDF shells out to pdftotext for a whole-document extraction.
type CommandPDF struct {
	Bin    string // binary name or absolute path; if empty -> "pdftotext"
	Runner Runner
}

func (CommandPDF) Name() string { return "pdftotext" }

func (c CommandPDF) Extract(ctx context.Context, data []byte) (string, error) {
	bin := c.Bin
	if bin == "" {
		bin = "pdftotext"
	}
	path, cleanup, err := writeTemp(data, "bill-*.pdf")
	if err != nil {
		return "", err
	}
	defer cleanup()

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := c.Runner.Run(ctx, bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}
	return Normalize(string(out)), nil
}

// ImageOCR runs tesseract over image uploads.
type ImageOCR struct {
	Bin         string // if empty -> "tesseract"
	Lang        string // default "spa+eng"
	TessdataDir string
	Runner      Runner
}

func (ImageOCR) Name() string { return "image-ocr" }

func (o ImageOCR) Extract(ctx context.Context, data []byte) (string, error) {
	bin := o.Bin
	if bin == "" {
		bin = "tesseract"
	}
	lang := o.Lang
	if lang == "" {
		lang = "spa+eng"
	}
	path, cleanup, err := writeTemp(data, "bill-*.img")
	if err != nil {
		return "", err
	}
	defer cleanup()

	args := []string{path, "stdout", "-l", lang}
	if o.TessdataDir != "" {
		args = append(args, "--tessdata-dir", o.TessdataDir)
	}
	// tesseract <file> stdout -l <lang>
	out, errb, err := o.Runner.Run(ctx, bin, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return Normalize(txt), nil
}

func writeTemp(data []byte, pattern string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "bt-extract-*")
	if err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return filepath.Clean(f.Name()), cleanup, nil
}
