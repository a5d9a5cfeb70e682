package core

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// PayerAddress returns FromAddress as a typed address when it is well formed hex.
func (o PaymentOutcome) PayerAddress() (common.Address, bool) {
	return parseAddress(o.FromAddress)
}

// RecipientAddress returns ToAddress as a typed address when it is well formed hex.
func (o PaymentOutcome) RecipientAddress() (common.Address, bool) {
	return parseAddress(o.ToAddress)
}

// TransactionHash returns TxHash as a typed 32 byte hash when it is well formed hex.
func (o PaymentOutcome) TransactionHash() (common.Hash, bool) {
	value := strings.TrimSpace(o.TxHash)
	raw := strings.TrimPrefix(strings.TrimPrefix(value, "0x"), "0X")
	if len(raw) != 2*common.HashLength || !isHex(raw) {
		return common.Hash{}, false
	}
	return common.HexToHash(value), true
}

func parseAddress(value string) (common.Address, bool) {
	value = strings.TrimSpace(value)
	if !common.IsHexAddress(value) {
		return common.Address{}, false
	}
	return common.HexToAddress(value), true
}

func isHex(value string) bool {
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
