package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format 导出格式
type Format string

const (
	Markdown Format = "md"
	Text     Format = "txt"
)

// Formats 导出时生成的全部格式
var Formats = []Format{Markdown, Text}

// MediaType 返回格式声明的媒体类型
func (f Format) MediaType() string {
	switch f {
	case Markdown:
		return "text/markdown"
	default:
		return "text/plain"
	}
}

// ParseFormat 接受 md/markdown 与 txt/text
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return Markdown, nil
	case "txt", "text", "plain":
		return Text, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Payload 一份可下载的报告
type Payload struct {
	Filename  string
	MediaType string
	Body      []byte
}

// Render 报告内容原样输出，两种格式只在文件名与媒体类型上不同
func Render(topic, report string, f Format) Payload {
	return Payload{
		Filename:  Filename(topic, f),
		MediaType: f.MediaType(),
		Body:      []byte(report),
	}
}

// Filename 主题中的空格替换为下划线：{topic}_report.{ext}
func Filename(topic string, f Format) string {
	return fmt.Sprintf("%s_report.%s", strings.ReplaceAll(topic, " ", "_"), f)
}

// WriteFiles 将报告以全部格式写入 dir，返回写入的路径
func WriteFiles(dir, topic, report string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string
	for _, f := range Formats {
		p := Render(topic, report, f)
		path := filepath.Join(dir, safeName(p.Filename))
		if err := os.WriteFile(path, p.Body, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// safeName 写本地文件时去掉路径分隔符
func safeName(name string) string {
	return strings.NewReplacer("/", "_", string(os.PathSeparator), "_").Replace(name)
}
