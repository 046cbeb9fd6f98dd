package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// PDFLoader reads every PDF in a directory into page-level documents.
type PDFLoader struct {
	Concurrency int
	Log         *slog.Logger
}

func NewPDFLoader(concurrency int, log *slog.Logger) *PDFLoader {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &PDFLoader{Concurrency: concurrency, Log: log}
}

// Load returns documents in file-name order, then page order. Any unreadable
// file aborts the whole load.
func (l *PDFLoader) Load(ctx context.Context, dir string) ([]Document, error) {
	files, err := ListPDFs(dir)
	if err != nil {
		return nil, err
	}

	perFile := make([][]Document, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.Concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs, err := ReadPDF(path)
			if err != nil {
				return err
			}
			perFile[i] = docs
			if l.Log != nil {
				l.Log.Debug("loaded pdf", "file", path, "pages", len(docs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var docs []Document
	for _, d := range perFile {
		docs = append(docs, d...)
	}
	return docs, nil
}

// ListPDFs returns the PDF files directly inside dir, sorted by name, minus
// those matched by the directory's ignore file.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoDirectory, err)
	}

	ignore, err := NewIgnoreMatcher(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsPDF(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if ignore.Match(path) {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// ReadPDF extracts one document per page with text. The PDF library panics
// on some malformed input, so panics become ErrCorruptPDF.
func ReadPDF(path string) (docs []Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = fmt.Errorf("%w: %s: %v", ErrCorruptPDF, path, r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptPDF, path, err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %s page %d: %w", ErrCorruptPDF, path, i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, Document{Source: path, Page: i, Text: text})
	}

	return docs, nil
}
