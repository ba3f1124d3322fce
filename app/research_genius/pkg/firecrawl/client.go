package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/logger"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/research"
)

const (
	DefaultBaseURL = "https://api.firecrawl.dev"

	statusCompleted = "completed"
	statusFailed    = "failed"
)

// Client Firecrawl 深度研究 API 客户端
type Client struct {
	baseURL   string
	apiKey    string
	pollEvery time.Duration
	client    *http.Client
}

// NewClient 创建一个新的 Firecrawl 客户端。pollInterval 为查询任务状态的间隔
func NewClient(baseURL, apiKey string, pollInterval time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		pollEvery: pollInterval,
		client:    http.DefaultClient,
	}
}

// Ensure Client implements research.Researcher
var _ research.Researcher = (*Client)(nil)

// StartRequest 创建深度研究任务的请求体
type StartRequest struct {
	Query     string `json:"query"`
	MaxDepth  int    `json:"maxDepth,omitempty"`
	TimeLimit int    `json:"timeLimit,omitempty"`
	MaxURLs   int    `json:"maxUrls,omitempty"`
}

// StartResponse 创建任务的响应
type StartResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Error   string `json:"error"`
}

// StatusResponse 任务状态
type StatusResponse struct {
	Success bool       `json:"success"`
	Status  string     `json:"status"`
	Error   string     `json:"error"`
	Data    StatusData `json:"data"`
}

// StatusData 任务完成后的数据
type StatusData struct {
	FinalAnalysis string         `json:"finalAnalysis"`
	Sources       []SourceRecord `json:"sources"`
}

// SourceRecord 单个来源
type SourceRecord struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Research implements research.Researcher.
// 没有本地超时：一直轮询到任务完成、失败或 ctx 被取消
func (c *Client) Research(ctx context.Context, req *research.Request) (*research.Result, error) {
	id, err := c.start(ctx, StartRequest{
		Query:     req.Query,
		MaxDepth:  req.MaxDepth,
		TimeLimit: req.TimeLimit,
		MaxURLs:   req.MaxURLs,
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Infof("Firecrawl 研究任务已创建: %s", id)

	limiter := rate.NewLimiter(rate.Every(c.pollEvery), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for job %s: %w", id, err)
		}

		st, err := c.status(ctx, id)
		if err != nil {
			return nil, err
		}

		switch st.Status {
		case statusCompleted:
			if strings.TrimSpace(st.Data.FinalAnalysis) == "" {
				return nil, fmt.Errorf("firecrawl job %s completed without analysis", id)
			}
			result := &research.Result{Report: st.Data.FinalAnalysis}
			for _, s := range st.Data.Sources {
				result.Sources = append(result.Sources, research.Source{Title: s.Title, URL: s.URL})
			}
			return result, nil
		case statusFailed:
			return nil, fmt.Errorf("firecrawl job %s failed: %s", id, st.Error)
		default:
			logger.Log.Debugf("Firecrawl 任务 %s 状态: %s", id, st.Status)
		}
	}
}

func (c *Client) start(ctx context.Context, body StartRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request failed: %w", err)
	}

	var resp StartResponse
	if err := c.do(ctx, http.MethodPost, "/v1/deep-research", bytes.NewReader(payload), &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.ID == "" {
		return "", fmt.Errorf("firecrawl rejected research request: %s", resp.Error)
	}
	return resp.ID, nil
}

func (c *Client) status(ctx context.Context, id string) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/deep-research/"+id, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("firecrawl status check failed: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("firecrawl api error (status %d): %s", res.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal response failed: %w", err)
	}
	return nil
}
