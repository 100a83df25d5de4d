package model

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// The encoding is only used to log prompt sizes, so any model family
// compatible with cl100k_base is close enough.
var encoding = sync.OnceValues(func() (*tiktoken.Tiktoken, error) {
	return tiktoken.EncodingForModel("gpt-3.5-turbo")
})

func CountTokens(text string) (int, error) {
	enc, err := encoding()
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
