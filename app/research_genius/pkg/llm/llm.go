package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/iWorld-y/research_genius/app/research_genius/pkg/config"
)

// NewChatModel 使用调用方提供的密钥初始化 OpenAI 兼容的对话模型
func NewChatModel(ctx context.Context, cfg config.LLMConfig, apiKey string) (model.BaseChatModel, error) {
	mc := &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  apiKey,
		Model:   cfg.Model,
	}
	if cfg.Temperature > 0 {
		t := cfg.Temperature
		mc.Temperature = &t
	}

	cm, err := openai.NewChatModel(ctx, mc)
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return cm, nil
}

// Func 绑定配置后的工厂，供 elaborator 按请求凭据创建模型
func Func(cfg config.LLMConfig) func(ctx context.Context, apiKey string) (model.BaseChatModel, error) {
	return func(ctx context.Context, apiKey string) (model.BaseChatModel, error) {
		return NewChatModel(ctx, cfg, apiKey)
	}
}
