package chatgpt

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/tiktoken-go/tokenizer"
)

// Chat formatting overhead, per the OpenAI cookbook counting guide.
const (
	tokensPerMessage = 3
	tokensPerName    = 1
	tokensPerReply   = 3
)

var codecs sync.Map // tokenizer.Encoding -> tokenizer.Codec

// encodingFor picks the BPE encoding used by a model family. Unknown models
// use o200k_base, the encoding of current models.
func encodingFor(model string) tokenizer.Encoding {
	m := strings.ToLower(strings.TrimSpace(model))
	switch {
	case strings.HasPrefix(m, "gpt-4o"), strings.HasPrefix(m, "gpt-4.1"), strings.HasPrefix(m, "o1"), strings.HasPrefix(m, "o3"):
		return tokenizer.O200kBase
	case strings.HasPrefix(m, "gpt-4"), strings.HasPrefix(m, "gpt-3.5"), strings.HasPrefix(m, "text-embedding"):
		return tokenizer.Cl100kBase
	case strings.HasPrefix(m, "text-davinci"), strings.HasPrefix(m, "code-davinci"), strings.HasPrefix(m, "code-cushman"):
		return tokenizer.P50kBase
	default:
		return tokenizer.O200kBase
	}
}

func codecFor(model string) (tokenizer.Codec, error) {
	enc := encodingFor(model)
	if cached, ok := codecs.Load(enc); ok {
		return cached.(tokenizer.Codec), nil
	}

	codec, err := tokenizer.Get(enc)
	if err != nil {
		return nil, errors.Wrapf(err, "load tokenizer %s", enc)
	}

	actual, _ := codecs.LoadOrStore(enc, codec)
	return actual.(tokenizer.Codec), nil
}

// CountTokens returns the number of tokens text encodes to for model.
func CountTokens(model, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	codec, err := codecFor(model)
	if err != nil {
		return 0, err
	}

	_, toks, err := codec.Encode(text)
	if err != nil {
		return 0, errors.Wrap(err, "encode text")
	}
	return len(toks), nil
}

// CountMessageTokens estimates the prompt tokens a chat request with
// messages will use, including the per-message framing and the tokens that
// prime the reply.
func CountMessageTokens(model string, messages []ChatMessage) (int, error) {
	codec, err := codecFor(model)
	if err != nil {
		return 0, err
	}

	count := func(s string) (int, error) {
		if s == "" {
			return 0, nil
		}
		_, toks, err := codec.Encode(s)
		return len(toks), err
	}

	total := tokensPerReply
	for _, msg := range messages {
		total += tokensPerMessage

		for _, s := range []string{msg.Role, msg.Content, msg.Name} {
			n, err := count(s)
			if err != nil {
				return 0, errors.Wrap(err, "encode message")
			}
			total += n
		}

		if msg.Name != "" {
			total += tokensPerName
		}
	}

	return total, nil
}
