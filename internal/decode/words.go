package decode

import (
	"fmt"
	"math/big"
	"strings"
)

// wordHexLen is the width of one 256-bit word in hex characters.
const wordHexLen = 64

// SplitWords decomposes a log data blob into ordered 256-bit words. The
// blob is left-padded with zero nibbles to the next whole-word boundary,
// tolerating upstream payloads that are not word-aligned. An empty or
// missing blob yields no words.
func SplitWords(dataHex string) ([]*big.Int, error) {
	h := strings.TrimPrefix(dataHex, "0x")
	if h == "" {
		return nil, nil
	}

	if rem := len(h) % wordHexLen; rem != 0 {
		h = strings.Repeat("0", wordHexLen-rem) + h
	}

	words := make([]*big.Int, 0, len(h)/wordHexLen)
	for i := 0; i < len(h); i += wordHexLen {
		chunk := h[i : i+wordHexLen]
		w, ok := new(big.Int).SetString(chunk, 16)
		if !ok {
			return nil, fmt.Errorf("invalid hex word at offset %d: %s", i, chunk)
		}
		words = append(words, w)
	}

	return words, nil
}
