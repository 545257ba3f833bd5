package recipient

import (
	"fmt"
	"strings"

	"github.com/blues/nftsender/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// Kind 接收者类型
type Kind string

const (
	KindEmail   Kind = "email"
	KindEVM     Kind = "evm"
	KindSolana  Kind = "solana"
	KindUnknown Kind = "unknown"
)

// Classify 判断接收者是邮箱、EVM 地址还是 Solana 地址
func Classify(recipient string) Kind {
	recipient = strings.TrimSpace(recipient)
	switch {
	case strings.Contains(recipient, "@"):
		return KindEmail
	case strings.HasPrefix(recipient, "0x") && common.IsHexAddress(recipient):
		return KindEVM
	case isSolanaAddress(recipient):
		return KindSolana
	default:
		return KindUnknown
	}
}

func isSolanaAddress(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	_, err := solana.PublicKeyFromBase58(s)
	return err == nil
}

// FormatForProvider 转换为外部服务要求的接收者格式
//   - 邮箱: email:<address>:<blockchain>
//   - 裸钱包地址: <blockchain>:<address>
//   - 其它原样返回（视为已格式化，例如 polygon-amoy:0x...）
func FormatForProvider(recipient string, blockchain model.Blockchain) string {
	recipient = strings.TrimSpace(recipient)
	if blockchain == "" {
		blockchain = model.DefaultBlockchain
	}
	switch Classify(recipient) {
	case KindEmail:
		return fmt.Sprintf("email:%s:%s", recipient, blockchain)
	case KindEVM, KindSolana:
		return fmt.Sprintf("%s:%s", blockchain, recipient)
	default:
		return recipient
	}
}
