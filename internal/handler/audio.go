package handler

import (
	"errors"
	"mime"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"natgpt/internal/ai/speech"
)

var allowedAudioTypes = map[string]bool{
	"audio/webm": true,
	"audio/mp4":  true,
	"audio/mpeg": true,
	"audio/wav":  true,
	"audio/ogg":  true,
}

// AudioHandler serves /transcribe and /speech. Either backend may be nil, in which
// case its route answers 503.
type AudioHandler struct {
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
}

// NewAudioHandler creates the handler.
func NewAudioHandler(t speech.Transcriber, s speech.Synthesizer) *AudioHandler {
	return &AudioHandler{transcriber: t, synthesizer: s}
}

// SpeechRequest body of POST /speech.
type SpeechRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// Transcribe converts uploaded audio to text
// @Summary      Transcribe audio
// @Description  Accepts audio/webm, mp4, mpeg, wav or ogg up to 25MB. Languages other than en and es fall back to en.
// @Tags         audio
// @Accept       multipart/form-data
// @Produce      json
// @Param        audio     formData  file    true   "Audio file"
// @Param        language  formData  string  false  "en or es"
// @Success      200       {object}  speech.Transcription
// @Failure      400       {object}  ErrorResponse
// @Failure      413       {object}  ErrorResponse
// @Failure      415       {object}  ErrorResponse
// @Failure      503       {object}  ErrorResponse
// @Router       /api/v1/transcribe [post]
func (h *AudioHandler) Transcribe(c *gin.Context) {
	if h.transcriber == nil {
		respondError(c, http.StatusServiceUnavailable, CodeUnavailable, "Transcription is not configured")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, speech.MaxAudioBytes+1<<20)
	file, err := c.FormFile("audio")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, CodeTooLarge, "Audio file is too large. Maximum size is 25MB.")
			return
		}
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Audio file is required", err.Error())
		return
	}
	if file.Size > speech.MaxAudioBytes {
		respondError(c, http.StatusRequestEntityTooLarge, CodeTooLarge, "Audio file is too large. Maximum size is 25MB.")
		return
	}
	if !isAllowedAudio(file.Header.Get("Content-Type")) {
		respondError(c, http.StatusUnsupportedMediaType, CodeUnsupported, "Unsupported audio format")
		return
	}

	f, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Failed to open audio file", err.Error())
		return
	}
	defer f.Close()

	language := speech.NormalizeLanguage(c.PostForm("language"))
	result, err := h.transcriber.Transcribe(c.Request.Context(), f, file.Filename, language)
	if err != nil {
		log.Error().Err(err).Int64("size", file.Size).Str("language", language).Msg("transcription failed")
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to transcribe audio")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Speech synthesizes text as mp3
// @Summary      Text to speech
// @Tags         audio
// @Accept       json
// @Produce      audio/mpeg
// @Param        request  body      SpeechRequest  true  "Text (max 4096 characters) and voice"
// @Success      200      {file}    binary
// @Failure      400      {object}  ErrorResponse
// @Failure      503      {object}  ErrorResponse
// @Router       /api/v1/speech [post]
func (h *AudioHandler) Speech(c *gin.Context) {
	if h.synthesizer == nil {
		respondError(c, http.StatusServiceUnavailable, CodeUnavailable, "Speech synthesis is not configured")
		return
	}

	var req SpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Text is required")
		return
	}
	if utf8.RuneCountInString(req.Text) > speech.MaxSpeechChars {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Text is too long. Maximum length is 4096 characters.")
		return
	}
	if !speech.IsSupportedVoice(req.Voice) {
		respondError(c, http.StatusBadRequest, CodeBadRequest, "Unsupported voice")
		return
	}

	audio, err := h.synthesizer.Synthesize(c.Request.Context(), req.Text, req.Voice)
	if err != nil {
		log.Error().Err(err).Int("text_length", utf8.RuneCountInString(req.Text)).Str("voice", req.Voice).Msg("speech synthesis failed")
		respondError(c, http.StatusInternalServerError, CodeInternal, "Failed to generate speech")
		return
	}

	c.Data(http.StatusOK, speech.SpeechContentType, audio)
}

// isAllowedAudio ignores parameters such as codecs=opus.
func isAllowedAudio(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return allowedAudioTypes[strings.ToLower(mediaType)]
}
