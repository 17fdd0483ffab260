package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"

	"natgpt/internal/config"
)

// Limits and defaults of the audio endpoints.
const (
	MaxAudioBytes     = 25 << 20
	MaxSpeechChars    = 4096
	DefaultLanguage   = "en"
	DefaultVoice      = "alloy"
	DefaultTTSModel   = string(openai.TTSModel1)
	DefaultSTTModel   = openai.Whisper1
	SpeechContentType = "audio/mpeg"
)

var (
	ErrNotConfigured = errors.New("speech: api key not configured")
	ErrInvalidVoice  = errors.New("speech: unsupported voice")
)

var supportedLanguages = map[string]bool{"en": true, "es": true}

var supportedVoices = map[string]openai.SpeechVoice{
	"alloy":   openai.VoiceAlloy,
	"echo":    openai.VoiceEcho,
	"fable":   openai.VoiceFable,
	"onyx":    openai.VoiceOnyx,
	"nova":    openai.VoiceNova,
	"shimmer": openai.VoiceShimmer,
}

// NormalizeLanguage returns lang when supported, otherwise DefaultLanguage.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if supportedLanguages[lang] {
		return lang
	}
	return DefaultLanguage
}

// Transcription result of a speech-to-text call.
type Transcription struct {
	Text       string  `json:"text"`
	Language   string  `json:"language"`
	Duration   float64 `json:"duration"`
	Confidence float64 `json:"confidence"`
}

// Transcriber turns audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, language string) (*Transcription, error)
}

// Synthesizer turns text into mp3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Client implements Transcriber and Synthesizer over the OpenAI audio API.
type Client struct {
	client       *openai.Client
	sttModel     string
	ttsModel     string
	defaultVoice string
}

// NewClient creates the client from cfg.
func NewClient(cfg *config.SpeechConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	c := &Client{
		client:       openai.NewClientWithConfig(clientCfg),
		sttModel:     cfg.TranscriptionModel,
		ttsModel:     cfg.TTSModel,
		defaultVoice: cfg.DefaultVoice,
	}
	if c.sttModel == "" {
		c.sttModel = DefaultSTTModel
	}
	if c.ttsModel == "" {
		c.ttsModel = DefaultTTSModel
	}
	if c.defaultVoice == "" {
		c.defaultVoice = DefaultVoice
	}
	return c, nil
}

// Transcribe sends audio to the transcription model. language is normalized to en or es.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (*Transcription, error) {
	language = NormalizeLanguage(language)

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.sttModel,
		FilePath: filename,
		Reader:   audio,
		Language: language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	out := &Transcription{
		Text:       strings.TrimSpace(resp.Text),
		Language:   language,
		Duration:   resp.Duration,
		Confidence: 1,
	}
	if n := len(resp.Segments); n > 0 {
		var sum float64
		for _, s := range resp.Segments {
			sum += s.AvgLogprob
		}
		out.Confidence = confidence(sum / float64(n))
	}
	return out, nil
}

// Synthesize renders text as mp3.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	v, err := c.voice(voice)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.ttsModel),
		Input:          text,
		Voice:          v,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}
	return audio, nil
}

func (c *Client) voice(name string) (openai.SpeechVoice, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = c.defaultVoice
	}
	v, ok := supportedVoices[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidVoice, name)
	}
	return v, nil
}

// IsSupportedVoice reports whether name is a known voice. Empty means the default.
func IsSupportedVoice(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	_, ok := supportedVoices[name]
	return name == "" || ok
}

// average log-probability to a 0..1 score
func confidence(avgLogprob float64) float64 {
	c := math.Exp(avgLogprob)
	if c > 1 {
		return 1
	}
	if c < 0 {
		return 0
	}
	return math.Round(c*1000) / 1000
}
