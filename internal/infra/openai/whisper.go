package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"voice-grbl/internal/domain"
	"voice-grbl/internal/infra"
)

type WhisperClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	language   string
	model      string
}

func NewWhisperClient(apiKey, language, model string) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, language, model, "https://api.openai.com/v1")
}

func NewWhisperClientWithURL(apiKey, language, model, baseURL string) *WhisperClient {
	if model == "" {
		model = "whisper-1"
	}
	return &WhisperClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		language:   language,
		model:      model,
	}
}

// verbose_json carries the per-segment text and token ids plus the detected language.
type transcriptionResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Text   string `json:"text"`
		Tokens []int  `json:"tokens"`
	} `json:"segments"`
}

func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) (domain.Transcript, error) {
	var result transcriptionResponse

	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)

		part, err := writer.CreateFormFile("file", "utterance.wav")
		if err != nil {
			return fmt.Errorf("creating form file: %w", err)
		}

		if _, err = part.Write(audio); err != nil {
			return fmt.Errorf("writing audio: %w", err)
		}

		fields := map[string]string{
			"model":           c.model,
			"response_format": "verbose_json",
		}
		if c.language != "" {
			fields["language"] = c.language
		}
		for k, v := range fields {
			if err = writer.WriteField(k, v); err != nil {
				return fmt.Errorf("writing %s field: %w", k, err)
			}
		}

		if err = writer.Close(); err != nil {
			return fmt.Errorf("closing writer: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			if infra.IsRetryableHTTPStatus(resp.StatusCode) {
				return fmt.Errorf("whisper API error %d: %s (retryable)", resp.StatusCode, string(respBody))
			}
			return infra.Permanent(fmt.Errorf("whisper API error %d: %s", resp.StatusCode, string(respBody)))
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return domain.Transcript{}, retryErr
	}

	transcript := domain.Transcript{Language: result.Language}
	for _, s := range result.Segments {
		transcript.Segments = append(transcript.Segments, domain.Segment{Text: s.Text, Tokens: s.Tokens})
	}
	if len(transcript.Segments) == 0 && result.Text != "" {
		transcript.Segments = []domain.Segment{{Text: result.Text}}
	}

	return transcript, nil
}
