package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/logger"
	"github.com/iWorld-y/research_genius/app/research_genius/pkg/research"
)

// maxContentLen 单个页面正文截断长度
const maxContentLen = 5000

// FetchFunc 抓取页面正文
type FetchFunc func(ctx context.Context, pageURL string) (string, error)

// Client SearXNG API 客户端
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	fetch   FetchFunc
}

// NewClient 创建一个新的 SearXNG 客户端。apiKey 非空时作为 Bearer token 发送给实例前的鉴权代理。
// timeout 只作用于单个页面的正文抓取，搜索请求本身只受 ctx 控制
func NewClient(baseURL, apiKey string, timeout int) *Client {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: t,
		client:  &http.Client{},
	}
	c.fetch = c.fetchAndCleanContent
	return c
}

// WithFetcher 替换正文抓取实现
func (c *Client) WithFetcher(f FetchFunc) *Client {
	c.fetch = f
	return c
}

// Ensure Client implements research.Researcher
var _ research.Researcher = (*Client)(nil)

// SearchResponse SearXNG 响应结构
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Answers []string       `json:"answers"`
}

// SearchResult SearXNG 单条结果
type SearchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	PublishedDate string  `json:"publishedDate"`
	Score         float64 `json:"score"`
}

// Research implements research.Researcher
// 搜索后抓取前 MaxURLs 个页面的正文，抓取失败时退回搜索摘要
func (c *Client) Research(ctx context.Context, req *research.Request) (*research.Result, error) {
	query := req.Topic
	if query == "" {
		query = req.Query
	}

	resp, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("searxng returned no results for %q", query)
	}

	limit := req.MaxURLs
	if limit <= 0 || limit > len(resp.Results) {
		limit = len(resp.Results)
	}

	entries := make([]research.Entry, 0, limit)
	for _, item := range resp.Results[:limit] {
		content := item.Content
		fetched, err := c.fetch(ctx, item.URL)
		if err != nil {
			logger.Log.Warnf("原文抓取失败，使用搜索摘要 [%s]: %v", item.Title, err)
		} else if len(fetched) > len(content) {
			content = fetched
		}
		content = truncate(content, maxContentLen)
		entries = append(entries, research.Entry{Title: item.Title, URL: item.URL, Content: content})
	}

	return research.Digest(query, strings.Join(resp.Answers, "\n"), entries), nil
}

func (c *Client) search(ctx context.Context, query string) (*SearchResponse, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = "/search"

	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("categories", "general")
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	// 添加 User-Agent 避免被简单的反爬虫策略拦截
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("searxng api error (status %d): %s", res.StatusCode, string(body))
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}
	return &searchResp, nil
}

// fetchAndCleanContent 抓取 URL 并提取核心文本
func (c *Client) fetchAndCleanContent(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	article, err := readability.FromURL(pageURL, c.timeout)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

// truncate 截断到不超过 max 字节，且不拆开多字节字符
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
