// Package ingest reads uploaded documents into plain text.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for file types that cannot be read.
var ErrUnsupported = errors.New("unsupported file type")

// Extensions lists the accepted file extensions.
var Extensions = []string{".txt", ".md", ".pdf", ".docx"}

// PDFToText is the command used to extract text from PDFs. It must accept
// "<file> -" and write the text to stdout.
var PDFToText = "pdftotext"

// File reads one document and returns its text.
func File(ctx context.Context, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown", "":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(b), nil
	case ".pdf":
		return pdfText(ctx, path)
	case ".docx":
		return docxText(path)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
}

// Texts reads every document and joins their text with blank lines, in
// the order given.
func Texts(ctx context.Context, paths []string) (string, error) {
	var parts []string
	for _, p := range paths {
		text, err := File(ctx, p)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// pdfText extracts text with pdftotext (poppler-utils).
func pdfText(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, PDFToText, "-layout", path, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("read %s: %s not found; install poppler-utils to read PDFs", filepath.Base(path), PDFToText)
		}
		return "", fmt.Errorf("pdftotext failed: %w\nstderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
