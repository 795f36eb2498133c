package llm

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"briefdeck/internal/logger"
)

// TokenEncoding is the BPE vocabulary used to count prompt tokens.
const TokenEncoding = "cl100k_base"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// encoding loads the BPE tables once. The first call may fetch them unless
// TIKTOKEN_CACHE_DIR already holds a copy; nil means counting falls back to length.
func encoding() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding(TokenEncoding)
		if err != nil {
			logger.Warn("Token encoding unavailable, estimating from length", "encoding", TokenEncoding, "error", err)
			return
		}
		enc = e
	})
	return enc
}

// EstimateTokens counts the cl100k_base tokens of text, or approximates four characters per
// token when the encoding cannot be loaded.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	if e := encoding(); e != nil {
		return len(e.Encode(text, nil, nil))
	}
	return approxTokens(text)
}

func approxTokens(text string) int {
	return (utf8.RuneCountInString(text) + 3) / 4
}
