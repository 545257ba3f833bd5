package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blues/nftsender/internal/logger"
	"github.com/blues/nftsender/internal/model"
	"github.com/blues/nftsender/internal/provider"
)

var (
	ErrMissingParams    = errors.New("missing templateId/collectionId or apiKey")
	ErrTemplateNotFound = errors.New("template not found in collection")
)

// CollectionReader 读取集合与模板
type CollectionReader interface {
	GetCollection(ctx context.Context, apiKey, collectionID string) (*provider.Collection, error)
	ListTemplates(ctx context.Context, apiKey, collectionID string) ([]provider.Template, error)
}

// Template 校验通过后的模板信息
type Template struct {
	ID                string            `json:"id"`
	CollectionID      string            `json:"collectionId"`
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	Image             string            `json:"image"`
	RawChain          string            `json:"rawChain"`
	Chain             model.Blockchain  `json:"chain"`
	ReadableChain     string            `json:"readableChain"`
	CompatibleWallets CompatibleWallets `json:"compatibleWallets"`
}

// Validator 模板/集合校验
type Validator struct {
	reader CollectionReader
}

// NewValidator 创建校验器
func NewValidator(reader CollectionReader) *Validator {
	return &Validator{reader: reader}
}

// Validate 确认外部服务接受该配置，并推断所属链
func (v *Validator) Validate(ctx context.Context, templateID, collectionID, apiKey string) (*Template, error) {
	templateID = strings.TrimSpace(templateID)
	collectionID = strings.TrimSpace(collectionID)
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" || (templateID == "" && collectionID == "") {
		return nil, ErrMissingParams
	}
	if collectionID == "" {
		collectionID = templateID
	}
	if templateID == "" {
		templateID = collectionID
	}

	logger.Debug("validating template=%s collection=%s", templateID, collectionID)
	collection, err := v.reader.GetCollection(ctx, apiKey, collectionID)
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", collectionID, err)
	}

	chain := ChainFromProvider(collection.ChainName())
	tpl := &Template{
		ID:                templateID,
		CollectionID:      collectionID,
		Name:              collection.DisplayName(),
		Description:       collection.Metadata.Description,
		Image:             collection.Metadata.Img(),
		RawChain:          collection.ChainName(),
		Chain:             chain,
		ReadableChain:     ReadableChain(chain),
		CompatibleWallets: WalletsFor(chain),
	}

	if templateID != collectionID {
		templates, err := v.reader.ListTemplates(ctx, apiKey, collectionID)
		if err != nil {
			return nil, fmt.Errorf("list templates of %s: %w", collectionID, err)
		}
		found := false
		for _, t := range templates {
			if t.TemplateId != templateID {
				continue
			}
			found = true
			if t.Metadata.Name != "" {
				tpl.Name = t.Metadata.Name
			}
			if t.Metadata.Description != "" {
				tpl.Description = t.Metadata.Description
			}
			if img := t.Metadata.Img(); img != "" {
				tpl.Image = img
			}
			break
		}
		if !found {
			return nil, ErrTemplateNotFound
		}
	}

	logger.Info("template %s valid on %s", templateID, chain)
	return tpl, nil
}
