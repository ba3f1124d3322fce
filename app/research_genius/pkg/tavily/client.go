package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/research"
)

const defaultBaseURL = "https://api.tavily.com/search"

// advancedDepth 研究深度达到该值时使用 advanced 搜索
const advancedDepth = 3

// Client Tavily API 客户端
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient 创建一个新的 Tavily 客户端
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  http.DefaultClient,
	}
}

// WithBaseURL 替换 API 地址（自建代理或测试）
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// Ensure Client implements research.Researcher
var _ research.Researcher = (*Client)(nil)

// Research implements research.Researcher
// Tavily 没有深度研究接口：深度映射为 search_depth，来源上限映射为 max_results
func (c *Client) Research(ctx context.Context, req *research.Request) (*research.Result, error) {
	tavilyReq := SearchRequest{
		Query:         req.Topic,
		MaxResults:    req.MaxURLs,
		IncludeAnswer: true,
	}
	if tavilyReq.Query == "" {
		tavilyReq.Query = req.Query
	}
	if req.MaxDepth >= advancedDepth {
		tavilyReq.SearchDepth = "advanced"
	}

	resp, err := c.doSearch(ctx, tavilyReq)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 && resp.Answer == "" {
		return nil, fmt.Errorf("tavily returned no results for %q", tavilyReq.Query)
	}

	entries := make([]research.Entry, 0, len(resp.Results))
	for _, r := range resp.Results {
		entries = append(entries, research.Entry{Title: r.Title, URL: r.URL, Content: r.Content})
	}
	return research.Digest(tavilyReq.Query, resp.Answer, entries), nil
}

// SearchRequest Tavily 搜索请求参数
type SearchRequest struct {
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth,omitempty"` // basic or advanced
	Topic             string   `json:"topic,omitempty"`        // general or news
	MaxResults        int      `json:"max_results,omitempty"`
	IncludeRawContent bool     `json:"include_raw_content,omitempty"`
	IncludeAnswer     bool     `json:"include_answer,omitempty"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	ExcludeDomains    []string `json:"exclude_domains,omitempty"`
}

// SearchResponse Tavily 搜索响应
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Answer  string         `json:"answer"`
}

// SearchResult 单个搜索结果
type SearchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	RawContent    string  `json:"raw_content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

// doSearch 执行搜索 (Internal)
func (c *Client) doSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.SearchDepth == "" {
		req.SearchDepth = "basic"
	}
	if req.MaxResults == 0 {
		req.MaxResults = 5
	}
	if req.Topic == "" {
		req.Topic = "general"
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	httpReq.Header.Add("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Add("Content-Type", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily api error (status %d): %s", res.StatusCode, string(body))
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	return &searchResp, nil
}
