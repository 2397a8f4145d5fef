package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/go-resty/resty/v2"

	"github.com/cooklang/cooklang-import/internal/httpclient"
	"github.com/cooklang/cooklang-import/internal/metrics"
)

// requestTimeout bounds a single completion call.
const requestTimeout = 120 * time.Second

// chatClient performs one JSON completion call and reads the reply text from
// textPath.
type chatClient struct {
	name     string
	label    string
	textPath string
	http     *resty.Client
}

func newChatClient(name, label, baseURL, textPath string) chatClient {
	return chatClient{
		name:     name,
		label:    label,
		textPath: textPath,
		http:     httpclient.NewRestyClient(strings.TrimRight(baseURL, "/"), requestTimeout),
	}
}

func (c chatClient) post(ctx context.Context, path string, headers, query map[string]string, body any) (string, error) {
	start := time.Now()
	defer metrics.RecordExternalCall(ctx, c.name, start)

	resp, err := c.http.R().
		SetContext(httpclient.WithProvider(ctx, c.label)).
		SetHeaders(headers).
		SetQueryParams(query).
		SetBody(body).
		Post(path)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", c.label, err)
	}

	if resp.StatusCode() >= 400 {
		return "", fmt.Errorf("%s API error (status %d): %s", c.label, resp.StatusCode(), errorMessage(resp.Body()))
	}

	var doc any
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return "", fmt.Errorf("%s returned invalid JSON: %w", c.label, err)
	}

	text, err := jsonpath.Get(c.textPath, doc)
	if err != nil {
		return "", fmt.Errorf("unexpected %s response: missing %s", c.label, c.textPath)
	}
	s, ok := text.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("unexpected %s response: empty text", c.label)
	}
	return s, nil
}

// errorMessage reads the vendor error envelope, falling back to the raw body.
func errorMessage(body []byte) string {
	var doc any
	if err := json.Unmarshal(body, &doc); err == nil {
		for _, path := range []string{"$.error.message", "$.error", "$.message"} {
			if v, err := jsonpath.Get(path, doc); err == nil {
				if s, ok := v.(string); ok && s != "" {
					return s
				}
			}
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 500 {
		msg = msg[:500]
	}
	return msg
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIChatRequest is shared by OpenAI, Azure OpenAI and Ollama.
type openAIChatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

func newOpenAIChatRequest(model string, temperature float64, maxTokens int, system, user string) openAIChatRequest {
	return openAIChatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

const openAITextPath = "$.choices[0].message.content"
