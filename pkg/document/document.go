// Package document pulls plain text out of uploaded PDF and DOCX files.
// Scanned PDFs without a text layer are sent through OCR.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/document/parser/docx"
	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoparser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"

	"github.com/1abhi6/BharatLens/pkg/ai"
	"github.com/1abhi6/BharatLens/pkg/media"
	"github.com/1abhi6/BharatLens/pkg/safe"
	"github.com/1abhi6/BharatLens/pkg/utils"
)

var (
	ErrUnsupportedDocumentFormat = errors.New("unsupported document format")
	ErrEmptyDocument             = errors.New("no text found in document")
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

const (
	EXTRACTOR_TEXT_LAYER = "text_layer"
	EXTRACTOR_OCR        = "ocr"
	EXTRACTOR_DOCX       = "docx"
)

type OCR interface {
	Recognize(ctx context.Context, data []byte) (string, error)
}

type Extractor struct {
	pdf  einoparser.Parser
	docx einoparser.Parser
	ocr  OCR
	pool *safe.Pool
}

// New builds an extractor on the eino-ext PDF and DOCX parsers. ocr may be nil,
// in which case scanned PDFs yield ErrEmptyDocument.
func New(ctx context.Context, pool *safe.Pool, ocr OCR) (*Extractor, error) {
	pdfParser, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("failed to init pdf parser, %w", err)
	}
	docxParser, err := docx.NewDocxParser(ctx, &docx.Config{
		ToSections:      false,
		IncludeComments: false,
		IncludeHeaders:  true,
		IncludeFooters:  false,
		IncludeTables:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init docx parser, %w", err)
	}
	return NewWithParsers(pdfParser, docxParser, ocr, pool), nil
}

func NewWithParsers(pdfParser, docxParser einoparser.Parser, ocr OCR, pool *safe.Pool) *Extractor {
	if pool == nil {
		pool = safe.NewPool(1)
	}
	return &Extractor{
		pdf:  pdfParser,
		docx: docxParser,
		ocr:  ocr,
		pool: pool,
	}
}

// DetectFormat checks the content type first and falls back to the file extension.
func DetectFormat(filename, contentType string) (Format, error) {
	switch media.Normalize(contentType) {
	case media.ContentTypePDF, "document/pdf":
		return FormatPDF, nil
	case media.ContentTypeDOCX, "document/docx":
		return FormatDOCX, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedDocumentFormat, contentType)
}

func (e *Extractor) Extract(ctx context.Context, filename, contentType string, data []byte) (ai.Extraction, error) {
	format, err := DetectFormat(filename, contentType)
	if err != nil {
		return ai.Extraction{}, err
	}

	var text, extractor string
	switch format {
	case FormatPDF:
		text, extractor, err = e.extractPDF(ctx, data)
	case FormatDOCX:
		extractor = EXTRACTOR_DOCX
		text, err = e.parse(ctx, e.docx, data)
	}
	if err != nil {
		return ai.Extraction{}, err
	}
	if text == "" {
		return ai.Extraction{}, ErrEmptyDocument
	}

	meta := map[string]any{
		"filename":   filename,
		"format":     string(format),
		"extractor":  extractor,
		"characters": utf8.RuneCountInString(text),
	}
	if lang := utils.WhatLang(text); lang != "" {
		meta["language"] = lang
	}
	return ai.Extraction{Text: text, Meta: meta}, nil
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, string, error) {
	text, err := e.parse(ctx, e.pdf, data)
	if err == nil && text != "" {
		return text, EXTRACTOR_TEXT_LAYER, nil
	}
	if ctx.Err() != nil {
		return "", "", ctx.Err()
	}
	if err != nil {
		slog.Warn("pdf text layer unreadable, trying ocr", slog.String("error", err.Error()))
	}
	if e.ocr == nil {
		if err != nil {
			return "", "", err
		}
		return "", EXTRACTOR_TEXT_LAYER, nil
	}

	var ocrText string
	err = e.pool.Do(ctx, func() error {
		var err error
		ocrText, err = e.ocr.Recognize(ctx, data)
		return err
	})
	if err != nil {
		return "", "", fmt.Errorf("ocr failed, %w", err)
	}
	return utils.CleanText(ocrText), EXTRACTOR_OCR, nil
}

func (e *Extractor) parse(ctx context.Context, p einoparser.Parser, data []byte) (string, error) {
	var docs []*schema.Document
	err := e.pool.Do(ctx, func() error {
		var err error
		docs, err = p.Parse(ctx, bytes.NewReader(data))
		return err
	})
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d == nil {
			continue
		}
		if c := strings.TrimSpace(d.Content); c != "" {
			parts = append(parts, c)
		}
	}
	return utils.CleanText(strings.Join(parts, "\n\n")), nil
}
