package document

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	einoparser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1abhi6/BharatLens/pkg/media"
	"github.com/1abhi6/BharatLens/pkg/safe"
)

type fakeParser struct {
	contents []string
	err      error
	delay    time.Duration
}

func (f *fakeParser) Parse(ctx context.Context, reader io.Reader, opts ...einoparser.Option) ([]*schema.Document, error) {
	if _, err := io.ReadAll(reader); err != nil {
		return nil, err
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	var docs []*schema.Document
	for _, c := range f.contents {
		docs = append(docs, &schema.Document{Content: c})
	}
	return docs, nil
}

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) Recognize(ctx context.Context, data []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		filename, contentType string
		want                  Format
		err                   bool
	}{
		{"a.bin", "application/pdf", FormatPDF, false},
		{"a.bin", media.ContentTypeDOCX, FormatDOCX, false},
		{"a.bin", "document/docx", FormatDOCX, false},
		{"Report.PDF", "application/octet-stream", FormatPDF, false},
		{"notes.docx", "", FormatDOCX, false},
		{"notes.doc", "application/msword", "", true},
	}
	for _, c := range cases {
		got, err := DetectFormat(c.filename, c.contentType)
		if c.err {
			assert.ErrorIs(t, err, ErrUnsupportedDocumentFormat)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestExtractPDFTextLayer(t *testing.T) {
	ocr := &fakeOCR{}
	e := NewWithParsers(&fakeParser{contents: []string{"Invoice 42\x00", " Total: 100 rupees "}}, nil, ocr, safe.NewPool(2))

	res, err := e.Extract(context.Background(), "inv.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "Invoice 42\n\nTotal: 100 rupees", res.Text)
	assert.Equal(t, EXTRACTOR_TEXT_LAYER, res.Meta["extractor"])
	assert.Equal(t, "pdf", res.Meta["format"])
	assert.Equal(t, "inv.pdf", res.Meta["filename"])
	assert.Equal(t, 0, ocr.calls)
}

func TestExtractScannedPDFFallsBackToOCR(t *testing.T) {
	ocr := &fakeOCR{text: "# Scanned page\nRation card"}
	e := NewWithParsers(&fakeParser{contents: []string{"  ", ""}}, nil, ocr, safe.NewPool(2))

	res, err := e.Extract(context.Background(), "scan.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "# Scanned page\nRation card", res.Text)
	assert.Equal(t, EXTRACTOR_OCR, res.Meta["extractor"])
	assert.Equal(t, 1, ocr.calls)
}

func TestExtractPDFParseErrorFallsBackToOCR(t *testing.T) {
	ocr := &fakeOCR{text: "recovered"}
	e := NewWithParsers(&fakeParser{err: errors.New("malformed xref")}, nil, ocr, nil)

	res, err := e.Extract(context.Background(), "bad.pdf", "application/pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "recovered", res.Text)
}

func TestExtractScannedPDFWithoutOCR(t *testing.T) {
	e := NewWithParsers(&fakeParser{}, nil, nil, nil)
	_, err := e.Extract(context.Background(), "scan.pdf", "application/pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestExtractOCRFailure(t *testing.T) {
	e := NewWithParsers(&fakeParser{}, nil, &fakeOCR{err: errors.New("quota")}, nil)
	_, err := e.Extract(context.Background(), "scan.pdf", "application/pdf", []byte("%PDF"))
	assert.ErrorContains(t, err, "quota")
}

func TestExtractDOCX(t *testing.T) {
	e := NewWithParsers(nil, &fakeParser{contents: []string{"Meeting minutes\nAgenda | Owner\nBudget | Priya"}}, nil, nil)

	res, err := e.Extract(context.Background(), "minutes.docx", media.ContentTypeDOCX, []byte("PK"))
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Budget | Priya")
	assert.Equal(t, EXTRACTOR_DOCX, res.Meta["extractor"])
	assert.Equal(t, 45, res.Meta["characters"])
}

func TestExtractUnsupported(t *testing.T) {
	e := NewWithParsers(nil, nil, nil, nil)
	_, err := e.Extract(context.Background(), "a.txt", "text/plain", []byte("hi"))
	assert.ErrorIs(t, err, ErrUnsupportedDocumentFormat)
}

func TestExtractHonoursContextWhileWaitingForPool(t *testing.T) {
	pool := safe.NewPool(1)
	slow := NewWithParsers(&fakeParser{contents: []string{"x"}, delay: 200 * time.Millisecond}, nil, nil, pool)

	go slow.Extract(context.Background(), "a.pdf", "application/pdf", []byte("%PDF"))
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := slow.Extract(ctx, "b.pdf", "application/pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
