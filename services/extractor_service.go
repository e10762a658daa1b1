package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/itish2003/lawgic/logger"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// SetPDFLicense applies a UniDoc metered key. An empty key is a no-op and PDF
// extraction then relies on whatever licensing the library allows.
func SetPDFLicense(key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("set unidoc license key: %w", err)
	}
	return nil
}

// UploadPlaceholder is the text substituted for a file that could not be read.
func UploadPlaceholder(name string) string {
	return "Uploaded file: " + name
}

// TextExtractor turns uploaded documents into plain text.
type TextExtractor struct {
	log     *logger.Logger
	tempDir string
}

// NewTextExtractor returns an extractor that stages uploads under tempDir,
// or the OS temp directory when tempDir is empty.
func NewTextExtractor(log *logger.Logger, tempDir string) *TextExtractor {
	return &TextExtractor{log: log.With("service", "TextExtractor"), tempDir: tempDir}
}

// ExtractUpload copies r into a temporary file, extracts its text, and removes
// the file. It never fails: any problem yields UploadPlaceholder(filename).
func (e *TextExtractor) ExtractUpload(ctx context.Context, r io.Reader, filename string) (text string) {
	name := filepath.Base(filename)
	placeholder := UploadPlaceholder(name)

	defer func() {
		if rec := recover(); rec != nil {
			e.log.Warn("extraction panicked", "filename", name, "panic", rec)
			text = placeholder
		}
	}()

	if !IsSupportedDocument(name) {
		e.log.Debug("unsupported upload type", "filename", name)
		return placeholder
	}

	tmp, err := os.CreateTemp(e.tempDir, "upload-*"+strings.ToLower(filepath.Ext(name)))
	if err != nil {
		e.log.Warn("could not create temp file", "filename", name, "error", err)
		return placeholder
	}
	defer os.Remove(tmp.Name())

	_, copyErr := io.Copy(tmp, readerWithContext(ctx, r))
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		e.log.Warn("could not stage upload", "filename", name, "copy_error", copyErr, "close_error", closeErr)
		return placeholder
	}

	out, err := ExtractTextFromFile(tmp.Name())
	if err != nil {
		e.log.Warn("text extraction failed", "filename", name, "error", err)
		return placeholder
	}
	e.log.Debug("extracted upload", "filename", name, "chars", len(out))
	return out
}

// ExtractTextFromFile reads a file and returns its text content based on
// its extension.
func ExtractTextFromFile(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".md":
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(strings.ToValidUTF8(string(content), "")), nil
	case ".pdf":
		return extractTextFromPDF(path)
	case ".docx":
		return extractTextFromDOCX(path)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

// IsSupportedDocument reports whether the extension has an extractor.
func IsSupportedDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".pdf", ".docx":
		return true
	default:
		return false
	}
}

// extractTextFromPDF uses UniPDF to get the text of every page. Any library
// error fails the whole file; a page that extracts cleanly but has no text
// contributes an empty line.
func extractTextFromPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("count pdf pages: %w", err)
	}

	return joinPages(numPages, func(i int) (string, error) {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return "", fmt.Errorf("pdf page %d extractor: %w", i, err)
		}
		text, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		return text, nil
	})
}

// joinPages collects pages 1..numPages in order, joined with "\n". The first
// page error aborts.
func joinPages(numPages int, pageText func(i int) (string, error)) (string, error) {
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		text, err := pageText(i)
		if err != nil {
			return "", err
		}
		pages = append(pages, text)
	}
	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// readerWithContext stops copying once ctx is done.
func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	if ctx == nil {
		return r
	}
	return ctxReader{ctx: ctx, r: r}
}
