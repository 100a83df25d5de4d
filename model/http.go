package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"contractrag/types"
)

// postJSON sends in as a JSON body and decodes the reply into out. Transport
// failures are reported as failure, except timeouts (ErrTimeout) and HTTP
// 429 (ErrRateLimited).
func postJSON(ctx context.Context, client *http.Client, url string, header http.Header, in, out any, failure error) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", failure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", failure, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return transportError(err, failure)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err, failure)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", types.ErrRateLimited, truncate(respBody))
	case resp.StatusCode == http.StatusGatewayTimeout || resp.StatusCode == http.StatusRequestTimeout:
		return fmt.Errorf("%w: status %d", types.ErrTimeout, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d, body: %s", failure, resp.StatusCode, truncate(respBody))
	}

	if out == nil {
		return nil
	}
	if err := decodeBody(respBody, out); err != nil {
		return fmt.Errorf("%w: failed to unmarshal response: %v", failure, err)
	}
	return nil
}

func transportError(err, failure error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", types.ErrTimeout, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", types.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", failure, err)
}

// decodeBody accepts a single JSON object or an NDJSON stream of Ollama
// chunks; for streams the "response" fields are concatenated.
func decodeBody(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err == nil {
		return nil
	}

	stream, ok := out.(*ollamaResponse)
	if !ok {
		return json.Unmarshal(body, out)
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	var merged ollamaResponse
	for decoder.More() {
		var chunk ollamaResponse
		if err := decoder.Decode(&chunk); err != nil {
			return err
		}
		merged.Response += chunk.Response
		merged.Done = chunk.Done
	}
	*stream = merged
	return nil
}

func truncate(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
