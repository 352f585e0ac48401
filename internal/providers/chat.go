package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// chatCompletion posts an OpenAI-style chat-completion payload and classifies
// the outcome into the three failure classes the router recovers from.
func chatCompletion(ctx context.Context, client *http.Client, ref CandidateRef, url string, headers map[string]string, messages []Message) (string, error) {
	payload, _ := json.Marshal(map[string]any{
		"model":    ref.Model,
		"messages": messages,
	})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &Failure{Candidate: ref, Kind: FailureTransport, Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", &Failure{Candidate: ref, Kind: FailureTransport, Err: err}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return "", &Failure{Candidate: ref, Kind: FailureReported, Err: fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 300))}
	}
	return extractChatContent(ref, body)
}

// extractChatContent pulls the content string out of an OpenAI-compatible
// response body. Two shapes are supported: choices[0].message.content and the
// older choices[0].text. A response that parses but carries an error field is
// a provider-reported failure, not a malformed one.
func extractChatContent(ref CandidateRef, body []byte) (string, error) {
	var parsed struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Choices []struct {
			Text    string `json:"text"`
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &Failure{Candidate: ref, Kind: FailureMalformed, Err: fmt.Errorf("decode response: %w", err)}
	}
	if parsed.Error != nil {
		return "", &Failure{Candidate: ref, Kind: FailureReported, Err: fmt.Errorf("provider error: %s", parsed.Error.Message)}
	}
	if len(parsed.Choices) == 0 {
		return "", &Failure{Candidate: ref, Kind: FailureMalformed, Err: fmt.Errorf("no choices in response")}
	}
	content := parsed.Choices[0].Message.Content
	if content == "" {
		content = parsed.Choices[0].Text
	}
	if content == "" {
		return "", &Failure{Candidate: ref, Kind: FailureMalformed, Err: fmt.Errorf("no content field in first choice")}
	}
	return content, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
