// Package document turns files into plain text for ranking.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/analysis"
	"github.com/spigell/resume-ranker/internal/logger"
)

const (
	MimePDF  = "application/pdf"
	MimeHTML = "text/html"
	MimeText = "text/plain"
)

var ErrUnsupportedType = errors.New("unsupported document type")

// Loader reads documents from disk or memory and extracts their text.
type Loader struct {
	logger *zap.Logger
}

func NewLoader(log *zap.Logger) *Loader {
	return &Loader{logger: logger.WithFields(log)}
}

// Detect sniffs the content type of data.
func Detect(data []byte) *mimetype.MIME {
	return mimetype.Detect(data)
}

// IsPDF reports whether data looks like a PDF file.
func IsPDF(data []byte) bool {
	return mimetype.Detect(data).Is(MimePDF)
}

// Text extracts plain text from data based on its sniffed content type.
func (l *Loader) Text(name string, data []byte) (string, error) {
	mtype := mimetype.Detect(data)

	switch {
	case mtype.Is(MimePDF):
		return PDFText(data)
	case isA(mtype, MimeHTML):
		return HTMLText(string(data))
	case isA(mtype, MimeText):
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s is %s", ErrUnsupportedType, name, mtype.String())
	}
}

// isA reports whether mtype or one of its parents is expected.
func isA(mtype *mimetype.MIME, expected string) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is(expected) {
			return true
		}
	}
	return false
}

// PDFText returns the plain text content of a PDF document.
func PDFText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}

// HTMLText converts an HTML document into markdown text.
func HTMLText(html string) (string, error) {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting html: %w", err)
	}
	return md, nil
}

// ReadText reads a single file and extracts its text.
func (l *Loader) ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return l.Text(filepath.Base(path), data)
}

// Read extracts the text of r.
func (l *Loader) Read(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return l.Text(name, data)
}

// LoadPaths turns files and directories into candidates. Directories expand to
// their regular files in lexical order, non recursively. Files of unsupported
// types inside a directory are skipped; an explicitly named file must be
// readable.
func (l *Loader) LoadPaths(paths []string) ([]analysis.Candidate, error) {
	var candidates []analysis.Candidate

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			text, err := l.ReadText(path)
			if err != nil {
				return nil, fmt.Errorf("loading %s: %w", path, err)
			}
			candidates = append(candidates, analysis.Candidate{ID: filepath.Base(path), Text: text})
			continue
		}

		files, err := l.dirFiles(path)
		if err != nil {
			return nil, err
		}

		for _, file := range files {
			text, err := l.ReadText(file)
			if errors.Is(err, ErrUnsupportedType) {
				l.logger.Warn("skipping unsupported file", zap.String(logger.FieldSource, file), zap.Error(err))
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("loading %s: %w", file, err)
			}
			candidates = append(candidates, analysis.Candidate{ID: filepath.Base(file), Text: text})
		}
	}

	l.logger.Debug("documents loaded", zap.Int("count", len(candidates)))
	return candidates, nil
}

func (l *Loader) dirFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	slices.Sort(files)
	return files, nil
}
