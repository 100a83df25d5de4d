package model

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"contractrag/types"
)

// OCR reads the text regions of an image, in reading order.
type OCR interface {
	Read(ctx context.Context, path string) ([]types.TextRegion, error)
}

// VisionOCR asks a vision-language model served by Ollama to transcribe an
// image into JSON text regions. Invalid JSON is sent back to the model for
// repair, up to attempts calls in total.
type VisionOCR struct {
	url      string
	model    string
	attempts int
	client   *http.Client
	backoff  time.Duration
	logger   *slog.Logger
}

const ocrPrompt = `You are an OCR engine.

Read all visible text in the provided image and return it as a SINGLE valid JSON object.

IMPORTANT RULES (MANDATORY):

- Output MUST be valid JSON.
- Output MUST start with '{' and end with '}'.
- Do NOT include explanations, comments, or markdown.
- Do NOT invent or infer text that is not visible.
- Preserve exact wording, capitalization, punctuation, and numbers.
- List regions in natural reading order (top to bottom, left to right).

JSON STRUCTURE (FIXED):

{
  "regions": [
    {
      "box": [x1, y1, x2, y2],
      "text": ""
    }
  ]
}

If the image contains no text, return {"regions": []}.

NOW read the image and return ONLY the JSON object.
`

type ocrResult struct {
	Regions []types.TextRegion `json:"regions"`
}

func NewVisionOCR(url, model string, attempts int, client *http.Client) *VisionOCR {
	if client == nil {
		client = http.DefaultClient
	}
	if attempts <= 0 {
		attempts = 1
	}
	return &VisionOCR{
		url:      url,
		model:    model,
		attempts: attempts,
		client:   client,
		backoff:  300 * time.Millisecond,
		logger:   slog.Default().With("component", "ocr"),
	}
}

func (o *VisionOCR) Read(ctx context.Context, path string) ([]types.TextRegion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrOcrFailed, err)
	}
	img := base64.StdEncoding.EncodeToString(data)

	var (
		lastErr error
		raw     string
	)
	for attempt := 1; attempt <= o.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", types.ErrOcrFailed, ctx.Err())
			case <-time.After(time.Duration(attempt-1) * o.backoff):
			}
		}

		o.logger.Info("reading image", "attempt", attempt, "model", o.model)
		req := ollamaRequest{Model: o.model, Prompt: ocrPrompt, Images: []string{img}}
		if raw != "" {
			req = ollamaRequest{Model: o.model, Prompt: buildRepairPrompt(raw)}
		}

		var resp ollamaResponse
		if err := postJSON(ctx, o.client, o.url, nil, req, &resp, types.ErrOcrFailed); err != nil {
			if errors.Is(err, types.ErrTimeout) || errors.Is(err, types.ErrRateLimited) {
				return nil, err
			}
			lastErr = err
			continue
		}

		regions, err := parseRegions(resp.Response)
		if err == nil {
			o.logger.Info("image read", "regions", len(regions))
			return regions, nil
		}
		raw = resp.Response
		lastErr = err
	}

	return nil, fmt.Errorf("%w: vision model failed after %d attempts: %v", types.ErrOcrFailed, o.attempts, lastErr)
}

func parseRegions(s string) ([]types.TextRegion, error) {
	js, err := extractJSON(s)
	if err != nil {
		return nil, err
	}
	var result ocrResult
	if err := json.Unmarshal([]byte(js), &result); err != nil {
		return nil, fmt.Errorf("invalid ocr json: %w", err)
	}
	return result.Regions, nil
}

func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")

	if start == -1 || end == -1 || end <= start {
		return s, errors.New("no valid json found")
	}

	return s[start : end+1], nil
}

func buildRepairPrompt(badOutput string) string {
	return fmt.Sprintf(`
You previously returned an invalid JSON.

Your task is to FIX the JSON.

RULES:
- Output ONLY valid JSON
- Keep the structure {"regions": [{"box": [x1, y1, x2, y2], "text": ""}]}
- Do NOT add or remove information
- Do NOT add explanations
- Do NOT include markdown
- Do NOT include text outside JSON

INVALID OUTPUT:
<<<
%s
>>>

Return the corrected JSON only.
`, badOutput)
}
