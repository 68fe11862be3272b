// Package baidu binds the PaddleOCR layout-parsing HTTP API hosted on Baidu
// AI Studio. It reads scanned PDFs and images back as markdown text.
package baidu

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	NAME = "baidu-ocr"

	FILE_TYPE_PDF   = 0
	FILE_TYPE_IMAGE = 1
)

var (
	ErrUnsupportedFile = errors.New("unsupported ocr file type")
	ErrEmptyResult     = errors.New("no ocr results returned")
)

type Config struct {
	APIURL string `toml:"api_url"`
	Token  string `toml:"token"`
}

type Driver struct {
	apiURL string
	token  string
	client *http.Client
}

func New(cfg Config) *Driver {
	return &Driver{
		apiURL: cfg.APIURL,
		token:  cfg.Token,
		client: &http.Client{Timeout: 2 * time.Minute},
	}
}

type ocrRequest struct {
	File                      string `json:"file"`
	FileType                  int    `json:"fileType"`
	UseDocOrientationClassify bool   `json:"useDocOrientationClassify"`
	UseDocUnwarping           bool   `json:"useDocUnwarping"`
	UseChartRecognition       bool   `json:"useChartRecognition"`
}

type ocrResponse struct {
	Result *struct {
		LayoutParsingResults []layoutResult `json:"layoutParsingResults"`
	} `json:"result"`
	ErrorCode int    `json:"errorCode"`
	ErrorMsg  string `json:"errorMsg"`
}

type layoutResult struct {
	Markdown struct {
		Text string `json:"text"`
	} `json:"markdown"`
}

// Recognize returns the markdown text of every page in data, pages separated
// by a horizontal rule.
func (d *Driver) Recognize(ctx context.Context, data []byte) (string, error) {
	var fileType int
	switch detectFileType(data) {
	case "pdf":
		fileType = FILE_TYPE_PDF
	case "image":
		fileType = FILE_TYPE_IMAGE
	default:
		return "", ErrUnsupportedFile
	}

	body, err := json.Marshal(ocrRequest{
		File:     base64.StdEncoding.EncodeToString(data),
		FileType: fileType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal OCR request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "token "+d.token)
	req.Header.Set("Content-Type", "application/json")

	slog.Debug("Recognize", slog.String("driver", NAME), slog.Int("bytes", len(data)), slog.Int("file_type", fileType))
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OCR request failed with status code %d: %s", resp.StatusCode, truncate(raw, 256))
	}

	var res ocrResponse
	if err = json.Unmarshal(raw, &res); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if res.ErrorCode != 0 {
		return "", fmt.Errorf("OCR API error: %s (code: %d)", res.ErrorMsg, res.ErrorCode)
	}
	if res.Result == nil || len(res.Result.LayoutParsingResults) == 0 {
		return "", ErrEmptyResult
	}

	return combineMarkdown(res.Result.LayoutParsingResults), nil
}

func combineMarkdown(results []layoutResult) string {
	pages := make([]string, 0, len(results))
	for _, v := range results {
		pages = append(pages, v.Markdown.Text)
	}
	return strings.Join(pages, "\n\n---\n\n")
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}

func detectFileType(data []byte) string {
	switch {
	case len(data) >= 4 && string(data[:4]) == "%PDF":
		return "pdf"
	case len(data) >= 8 && bytes.Equal(data[:8], []byte("\x89PNG\r\n\x1a\n")):
		return "image"
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "image"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "image"
	default:
		return "unknown"
	}
}
