package speech

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"natgpt/internal/pkg/storage"
)

// CachedSynthesizer keeps synthesized audio in object storage keyed by voice and text.
type CachedSynthesizer struct {
	inner Synthesizer
	store storage.Storage
}

// NewCachedSynthesizer wraps inner with store.
func NewCachedSynthesizer(inner Synthesizer, store storage.Storage) *CachedSynthesizer {
	return &CachedSynthesizer{inner: inner, store: store}
}

// CacheKey is the storage key for voice and text.
func CacheKey(voice, text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(voice)) + "\x00" + text))
	return "speech/" + hex.EncodeToString(sum[:]) + ".mp3"
}

// Synthesize returns cached audio when present, otherwise renders and stores it.
func (c *CachedSynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	key := CacheKey(voice, text)

	if rc, err := c.store.Download(ctx, key); err == nil {
		audio, readErr := io.ReadAll(rc)
		rc.Close()
		if readErr == nil {
			log.Debug().Str("key", key).Msg("speech cache hit")
			return audio, nil
		}
		log.Warn().Err(readErr).Str("key", key).Msg("speech cache read failed")
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Warn().Err(err).Str("key", key).Msg("speech cache lookup failed")
	}

	audio, err := c.inner.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, err
	}

	if _, err := c.store.Upload(ctx, key, bytes.NewReader(audio), SpeechContentType); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("speech cache write failed")
	}
	return audio, nil
}
