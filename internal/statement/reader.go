// Package statement reads batches of transactions from files for checking.
//
// Each entry is checked on its own; nothing in this package totals or
// groups entries.
package statement

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/config"
	"github.com/Veraticus/regulaite/internal/model"
)

// Supported formats.
const (
	FormatAuto = "auto"
	FormatOFX  = "ofx"
	FormatText = "text"
)

// Reader turns a stream into statement entries.
type Reader interface {
	Read(ctx context.Context, r io.Reader) ([]model.StatementEntry, error)
}

// NewReader returns the reader for format.
func NewReader(format string, logger *slog.Logger) (Reader, error) {
	switch strings.ToLower(format) {
	case FormatOFX, "qfx":
		return NewOFXReader(logger), nil
	case FormatText, "txt":
		return TextReader{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedFormat, format)
	}
}

// DetectFormat picks a format from a file extension.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return FormatOFX
	default:
		return FormatText
	}
}

// ReadFile opens path and reads it with the reader for format. FormatAuto
// (or "") chooses by extension.
func ReadFile(ctx context.Context, path, format string, logger *slog.Logger) ([]model.StatementEntry, error) {
	path = config.ExpandPath(path)
	if format == "" || strings.EqualFold(format, FormatAuto) {
		format = DetectFormat(path)
	}

	reader, err := NewReader(format, logger)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement: %w", err)
	}
	defer func() { _ = f.Close() }()

	return reader.Read(ctx, f)
}

// TextReader reads one transaction description per line. Blank lines and
// lines starting with # are skipped.
type TextReader struct{}

// Read implements Reader.
func (TextReader) Read(ctx context.Context, r io.Reader) ([]model.StatementEntry, error) {
	var entries []model.StatementEntry

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		entries = append(entries, model.StatementEntry{
			ID:          "line-" + strconv.Itoa(line),
			Description: text,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read text statement: %w", err)
	}

	return entries, nil
}
