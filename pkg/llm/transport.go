package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"exam-prep-be/pkg/retry"
)

// DefaultTimeout bounds one generation call. Batches of questions take
// minutes on local models.
const DefaultTimeout = 3 * time.Minute

// Resolve applies options over base.
func Resolve(base Options, options []Option) Options {
	for _, o := range options {
		o(&base)
	}
	return base
}

// Prompt wraps a single user prompt as a chat history.
func Prompt(prompt string) []Message {
	return []Message{{Role: "user", Content: prompt}}
}

// PostJSON sends in as a JSON body and decodes the reply into out. Non-2xx
// replies come back as *retry.HTTPStatusError.
func PostJSON(ctx context.Context, client *http.Client, url string, header http.Header, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &retry.HTTPStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
