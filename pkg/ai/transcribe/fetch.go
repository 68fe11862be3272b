package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type transcriptFile struct {
	Results struct {
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
		LanguageCodes []struct {
			LanguageCode string  `json:"language_code"`
			DurationSec  float64 `json:"duration_in_seconds"`
		} `json:"language_codes"`
	} `json:"results"`
}

// FetchTranscript downloads and decodes a transcript document.
func FetchTranscript(ctx context.Context, cli *http.Client, uri string) (Transcript, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return Transcript{}, err
	}

	resp, err := cli.Do(req)
	if err != nil {
		return Transcript{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Transcript{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var f transcriptFile
	if err = json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return Transcript{}, fmt.Errorf("failed to decode transcript, %w", err)
	}

	var res Transcript
	if len(f.Results.Transcripts) > 0 {
		res.Text = f.Results.Transcripts[0].Transcript
	}
	for _, v := range f.Results.LanguageCodes {
		if v.LanguageCode != "" {
			res.LanguageCodes = append(res.LanguageCodes, v.LanguageCode)
		}
	}
	return res, nil
}
