package decode

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"presaleScope/internal/model"
)

// ParseEvent maps one raw log to a decoded event. The second return is
// false when the log cannot yield a valid record: fewer than two topics,
// a malformed block number or data blob, or no decodable lock duration.
func ParseEvent(raw model.RawLog) (model.Event, bool) {
	if len(raw.Topics) < 2 {
		return model.Event{}, false
	}

	blockNumber, err := parseHexUint64(raw.BlockNumber)
	if err != nil {
		return model.Event{}, false
	}

	words, err := SplitWords(raw.Data)
	if err != nil {
		return model.Event{}, false
	}

	lock := PickLockMonths(words)
	if !lock.Found {
		return model.Event{}, false
	}
	usd := PickUSD(words)

	return model.Event{
		Wallet:      WalletFromTopic(raw.Topics[1]),
		USD:         usd.Amount,
		LockMonths:  lock.Months,
		TxHash:      raw.TransactionHash,
		BlockNumber: blockNumber,
	}, true
}

// WalletFromTopic extracts the address packed into the low 20 bytes of an
// indexed topic, lower-cased.
func WalletFromTopic(topic string) string {
	return strings.ToLower(common.HexToAddress(topic).Hex())
}

// parseHexUint64 parses an Etherscan hex quantity. Unlike hexutil it
// tolerates leading zero digits, which the API emits occasionally.
func parseHexUint64(s string) (uint64, error) {
	h := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseUint(h, 16, 64)
}
