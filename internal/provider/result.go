package provider

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
)

// NetworkErrorMessage 传输层失败时统一的错误信息
const NetworkErrorMessage = "Network error"

// Error 失败详情
type Error struct {
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Result 一次铸造调用的统一结果，在外部服务边界构造一次，下游不再推断成功与否
type Result struct {
	OK     bool            `json:"ok"`
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// Success 构造成功结果
func Success(status int, data json.RawMessage) Result {
	return Result{OK: true, Status: status, Data: data}
}

// Failure 构造失败结果
func Failure(status int, message string, details json.RawMessage) Result {
	return Result{OK: false, Status: status, Error: &Error{Message: message, Details: details}}
}

// NetworkFailure 请求未能到达或响应无法读取
func NetworkFailure(err error) Result {
	details, _ := json.Marshal(map[string]string{"text": err.Error()})
	return Failure(http.StatusInternalServerError, NetworkErrorMessage, details)
}

// ErrorMessage 失败时的错误信息
func (r Result) ErrorMessage() string {
	if r.OK || r.Error == nil {
		return ""
	}
	return r.Error.Message
}

// Body 返回可解析的 JSON 响应体；无法解析时包装为 {"text": ...}
func Body(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	wrapped, _ := json.Marshal(map[string]string{"text": string(raw)})
	return wrapped
}

// FromHTTP 按 HTTP 状态码判断外部服务的直接响应
func FromHTTP(status int, raw []byte) Result {
	body := Body(raw)
	if status >= 200 && status < 300 {
		return Success(status, body)
	}
	return Failure(status, ExtractMessage(body, http.StatusText(status)), body)
}

// envelope 两种响应形态的并集：{success,data,error} 或直接的 {id,...}
type envelope struct {
	Success *bool           `json:"success"`
	ID      json.RawMessage `json:"id"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// FromEnvelope 解析经过边缘函数转发的响应
// 有显式 success=true，或者带 id 且没有 error 时视为成功
func FromEnvelope(status int, raw []byte) Result {
	body := Body(raw)
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Failure(status, ExtractMessage(body, "Unknown error"), body)
	}

	ok := env.Success != nil && *env.Success
	if !ok && env.Success == nil && present(env.ID) && !present(env.Error) {
		ok = true
	}
	if ok {
		if present(env.Data) {
			return Success(status, env.Data)
		}
		return Success(status, body)
	}

	details := body
	if present(env.Error) {
		var nested struct {
			Details json.RawMessage `json:"details"`
		}
		if json.Unmarshal(env.Error, &nested) == nil && present(nested.Details) {
			details = nested.Details
		}
	}
	return Failure(status, ExtractMessage(body, "Unknown error"), details)
}

// ExtractMessage 依次尝试 error.message、error、message、text 字段
func ExtractMessage(body json.RawMessage, fallback string) string {
	var v struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Text    string          `json:"text"`
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return fallback
	}

	if present(v.Error) {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(v.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		var s string
		if json.Unmarshal(v.Error, &s) == nil && s != "" {
			return s
		}
	}
	if v.Message != "" {
		return v.Message
	}
	if t := strings.TrimSpace(v.Text); t != "" {
		return t
	}
	return fallback
}

func present(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null" && s != "false" && s != `""`
}
