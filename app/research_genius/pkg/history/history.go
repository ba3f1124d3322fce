package history

import "sync"

// labelRunes 侧边栏标签保留的字符数
const labelRunes = 30

// History 当前进程内的研究主题记录，只追加，跳过完全相同的主题
type History struct {
	mu     sync.Mutex
	topics []string
}

func New() *History {
	return &History{}
}

// Add 追加主题，已存在完全相同的字符串时返回 false
func (h *History) Add(topic string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, t := range h.topics {
		if t == topic {
			return false
		}
	}
	h.topics = append(h.topics, topic)
	return true
}

// Items 按加入顺序返回副本
func (h *History) Items() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.topics))
	copy(out, h.topics)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics)
}

// Labels 生成侧边栏按钮文本：前 30 个字符加省略号
func (h *History) Labels() []string {
	items := h.Items()
	labels := make([]string, len(items))
	for i, t := range items {
		labels[i] = Label(t)
	}
	return labels
}

func Label(topic string) string {
	runes := []rune(topic)
	if len(runes) > labelRunes {
		runes = runes[:labelRunes]
	}
	return string(runes) + "..."
}
