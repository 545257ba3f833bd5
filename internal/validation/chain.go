package validation

import (
	"strings"

	"github.com/blues/nftsender/internal/model"
)

// ChainFromProvider 将外部服务的链名映射为支持的链，无法识别时为 chiliz
func ChainFromProvider(raw string) model.Blockchain {
	chain := strings.ToLower(raw)
	switch {
	case strings.Contains(chain, "chiliz"):
		return model.BlockchainChiliz
	case strings.Contains(chain, "polygon"):
		return model.BlockchainPolygonAmoy
	case strings.Contains(chain, "ethereum"):
		return model.BlockchainEthereumSepolia
	case strings.Contains(chain, "solana"):
		return model.BlockchainSolana
	default:
		return model.DefaultBlockchain
	}
}

// ReadableChain 展示用链名
func ReadableChain(b model.Blockchain) string {
	switch b {
	case model.BlockchainSolana:
		return "Solana"
	case model.BlockchainPolygonAmoy:
		return "Polygon"
	case model.BlockchainEthereumSepolia:
		return "Ethereum"
	default:
		return "Chiliz"
	}
}

// CompatibleWallets 该链可接收的钱包类型
type CompatibleWallets struct {
	IsEVM                    bool   `json:"isEVM"`
	IsSolana                 bool   `json:"isSolana"`
	RequiresFormat           string `json:"requiresFormat"`
	WalletPrefix             string `json:"walletPrefix"`
	RecommendedAddressFormat string `json:"recommendedAddressFormat"`
	ExpectedAddressType      string `json:"expectedAddressType"`
}

// WalletsFor 计算链的钱包兼容信息
func WalletsFor(b model.Blockchain) CompatibleWallets {
	if b == model.BlockchainSolana {
		return CompatibleWallets{
			IsSolana:                 true,
			RequiresFormat:           string(b),
			WalletPrefix:             "Solana addresses",
			RecommendedAddressFormat: "Solana address (e.g., 7Nw3Sbj8wNXnGzL6M6xx1GRFGwRk5VfhRGQmzYN2eL3H)",
			ExpectedAddressType:      "solana",
		}
	}
	return CompatibleWallets{
		IsEVM:                    true,
		RequiresFormat:           string(b),
		WalletPrefix:             "EVM addresses (0x...)",
		RecommendedAddressFormat: "EVM address (e.g., 0x1234...)",
		ExpectedAddressType:      "evm",
	}
}
