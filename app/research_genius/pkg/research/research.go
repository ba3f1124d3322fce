package research

import (
	"context"
	"fmt"
	"strings"
)

// Researcher 外部深度研究服务的通用接口
type Researcher interface {
	Research(ctx context.Context, req *Request) (*Result, error)
}

// Request 通用研究请求。Query 为格式化后的完整指令，其余字段作为提示原样转发
type Request struct {
	Query     string
	Topic     string
	MaxDepth  int
	TimeLimit int // 秒
	MaxURLs   int
}

// Result 研究服务返回的文本报告
type Result struct {
	Report  string
	Sources []Source
}

// Source 报告引用的来源
type Source struct {
	Title string
	URL   string
}

// Entry 组装摘要报告时的一条来源内容
type Entry struct {
	Title   string
	URL     string
	Content string
}

// Digest 将搜索类提供方的结果组装成文本报告：可选的总述，随后逐条列出来源
func Digest(topic, answer string, entries []Entry) *Result {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Research: %s\n\n", topic)
	if answer = strings.TrimSpace(answer); answer != "" {
		fmt.Fprintf(&sb, "## Summary\n\n%s\n\n", answer)
	}
	sb.WriteString("## Findings\n\n")

	res := &Result{}
	for i, e := range entries {
		fmt.Fprintf(&sb, "### [%d] %s\n%s\n\n%s\n\n", i+1, e.Title, e.URL, strings.TrimSpace(e.Content))
		res.Sources = append(res.Sources, Source{Title: e.Title, URL: e.URL})
	}
	res.Report = strings.TrimRight(sb.String(), "\n") + "\n"
	return res
}
