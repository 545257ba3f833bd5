package provider

import (
	"encoding/json"
	"fmt"
)

// Metadata 集合或模板的展示信息
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	Image       string `json:"image"`
}

// Img imageUrl 优先，其次 image
func (m Metadata) Img() string {
	if m.ImageURL != "" {
		return m.ImageURL
	}
	return m.Image
}

// OnChain 链上信息
type OnChain struct {
	Chain string `json:"chain"`
}

// Collection GET /collections/{id} 的响应
type Collection struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Chain    string   `json:"chain"`
	Metadata Metadata `json:"metadata"`
	OnChain  OnChain  `json:"onChain"`
}

// ChainName onChain.chain 优先，其次顶层 chain
func (c *Collection) ChainName() string {
	if c.OnChain.Chain != "" {
		return c.OnChain.Chain
	}
	return c.Chain
}

// DisplayName metadata.name 优先
func (c *Collection) DisplayName() string {
	if c.Metadata.Name != "" {
		return c.Metadata.Name
	}
	return c.Name
}

// Template 集合下的模板
type Template struct {
	TemplateId string   `json:"templateId"`
	Metadata   Metadata `json:"metadata"`
}

// decodeTemplates 兼容数组以及 {templates:[...]} / {data:[...]} 两种包装
func decodeTemplates(raw []byte) ([]Template, error) {
	var list []Template
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Templates []Template `json:"templates"`
		Data      []Template `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	if wrapped.Templates != nil {
		return wrapped.Templates, nil
	}
	return wrapped.Data, nil
}
