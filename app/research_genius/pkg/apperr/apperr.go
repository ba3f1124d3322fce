package apperr

import (
	"fmt"
	"net/http"

	"github.com/go-kratos/kratos/v2/errors"
)

const (
	// ReasonInvalidRequest 请求在调用任何外部服务之前即被拒绝（缺少凭据、主题为空、参数越界）
	ReasonInvalidRequest = "INVALID_REQUEST"
	// ReasonExternalService 外部研究服务或 LLM 服务调用失败
	ReasonExternalService = "EXTERNAL_SERVICE"

	metadataPhase = "phase"
)

// Phase 标识失败发生在哪个阶段
type Phase string

const (
	PhaseGather    Phase = "gather"
	PhaseElaborate Phase = "elaborate"
)

// InvalidRequest 构造一个请求校验错误
func InvalidRequest(format string, a ...any) *errors.Error {
	return errors.BadRequest(ReasonInvalidRequest, fmt.Sprintf(format, a...))
}

// ExternalService 将外部调用的失败包装为带阶段信息的错误，保留原始 cause
func ExternalService(phase Phase, cause error) *errors.Error {
	msg := fmt.Sprintf("%s phase: external call failed", phase)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return errors.New(http.StatusBadGateway, ReasonExternalService, msg).
		WithCause(cause).
		WithMetadata(map[string]string{metadataPhase: string(phase)})
}

// IsInvalidRequest reports whether err carries the INVALID_REQUEST reason.
func IsInvalidRequest(err error) bool {
	return err != nil && errors.Reason(err) == ReasonInvalidRequest
}

// IsExternalService reports whether err carries the EXTERNAL_SERVICE reason.
func IsExternalService(err error) bool {
	return err != nil && errors.Reason(err) == ReasonExternalService
}

// PhaseOf 返回外部调用错误所属阶段，非外部调用错误返回空串
func PhaseOf(err error) Phase {
	if !IsExternalService(err) {
		return ""
	}
	return Phase(errors.FromError(err).Metadata[metadataPhase])
}

// UserMessage 生成面向用户的提示，区分 "缺少凭据/主题" 与 "外部调用失败"
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case IsInvalidRequest(err):
		return "⚠️ " + errors.FromError(err).Message
	case IsExternalService(err):
		switch PhaseOf(err) {
		case PhaseGather:
			return "❌ Web research failed: " + causeText(err) + ". Please check your research API key and try again."
		case PhaseElaborate:
			return "❌ Report enhancement failed: " + causeText(err) + ". Please check your LLM API key and try again."
		}
	}
	return "❌ An error occurred: " + err.Error()
}

func causeText(err error) string {
	se := errors.FromError(err)
	if cause := se.Unwrap(); cause != nil {
		return cause.Error()
	}
	return se.Message
}
