package dispatcher

import (
	"fmt"
	"strings"

	"github.com/blues/nftsender/internal/model"
	"github.com/blues/nftsender/internal/recipient"
)

var evmMarkers = []string{"evm", "ethereum", "polygon", "chiliz", "0x", "hex"}

// mismatchHint 地址类型与集合所在链不一致时，把外部服务的报错改写得更易懂
func mismatchHint(message, to string, chain model.Blockchain) string {
	lower := strings.ToLower(message)
	kind := recipient.Classify(to)

	switch kind {
	case recipient.KindEVM:
		if strings.Contains(lower, "solana") || (chain == model.BlockchainSolana && isAddressError(lower)) {
			return fmt.Sprintf("Blockchain mismatch: %s is an EVM address but the collection expects a Solana address (%s)", to, message)
		}
	case recipient.KindSolana:
		if containsAny(lower, evmMarkers) || (chain.IsEVM() && isAddressError(lower)) {
			return fmt.Sprintf("Blockchain mismatch: %s is a Solana address but the collection expects an EVM address (%s)", to, message)
		}
	}
	return message
}

func isAddressError(msg string) bool {
	return strings.Contains(msg, "invalid") && strings.Contains(msg, "address")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
