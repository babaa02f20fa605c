package modelserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/odner-app/odner/internal/core/domain"
	"github.com/odner-app/odner/internal/infrastructure/resilience"
)

// Client talks to the model server hosting the NER, QA and translation
// pipelines. One client serves all three roles; every call goes through
// the shared resilience executor under its own operation name.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL string, timeout time.Duration, executor *resilience.Executor) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

// Tag runs the built-in NER pipeline over text and returns the label ->
// occurrences map.
func (c *Client) Tag(ctx context.Context, text string, lang domain.Language) (domain.EntityDict, error) {
	request := map[string]any{
		"text":     text,
		"language": string(lang),
	}

	var response struct {
		Entities domain.EntityDict `json:"entities"`
	}
	if err := c.call(ctx, "ner", "/ner", request, &response); err != nil {
		return nil, err
	}
	if response.Entities == nil {
		response.Entities = domain.EntityDict{}
	}
	return response.Entities, nil
}

// ExtractAnswer answers question over contextText with the named QA model.
func (c *Client) ExtractAnswer(ctx context.Context, question, model, contextText string) (domain.Answer, error) {
	request := map[string]any{
		"question": question,
		"model":    model,
		"context":  contextText,
	}

	var response domain.Answer
	if err := c.call(ctx, "qa", "/qa", request, &response); err != nil {
		return domain.Answer{}, err
	}
	return response, nil
}

// Translate converts text between the supported languages.
func (c *Client) Translate(ctx context.Context, text string, from, to domain.Language) (string, error) {
	request := map[string]any{
		"text":   text,
		"source": string(from),
		"target": string(to),
	}

	var response struct {
		Text string `json:"text"`
	}
	if err := c.call(ctx, "translate", "/translate", request, &response); err != nil {
		return "", err
	}
	return response.Text, nil
}

func (c *Client) call(ctx context.Context, operation, path string, payload, out any) error {
	run := func(ctx context.Context) error {
		return c.postJSON(ctx, path, payload, out, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "modelserver_"+operation, run, classifyModelServerError)
	} else {
		err = run(ctx)
	}
	return wrapTemporaryIfNeeded("model server "+operation, err)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("model server %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
