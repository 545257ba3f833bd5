package recipient

import (
	"errors"
	"regexp"
	"strings"
)

// walletMinLength 钱包地址的最小长度（粗略判断）
const walletMinLength = 30

var (
	ErrNoValidRecipients = errors.New("no valid recipients")

	separators = regexp.MustCompile(`[\s,]+`)
)

// Result 解析结果
type Result struct {
	Recipients []string `json:"recipients"`
	Count      int      `json:"count"`
}

// Parse 解析粘贴的文本，按空白或逗号切分，保留外形合法的接收者，不去重
func Parse(text string) (Result, error) {
	return filter(separators.Split(text, -1))
}

// IsValid 邮箱（含 @ 和 .）或长度不小于 30 的字符串
func IsValid(token string) bool {
	if strings.Contains(token, "@") && strings.Contains(token, ".") {
		return true
	}
	return len(token) >= walletMinLength
}

func filter(tokens []string) (Result, error) {
	recipients := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" || !IsValid(token) {
			continue
		}
		recipients = append(recipients, token)
	}
	if len(recipients) == 0 {
		return Result{}, ErrNoValidRecipients
	}
	return Result{Recipients: recipients, Count: len(recipients)}, nil
}
