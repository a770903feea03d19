package upstream

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/faycal55/respira/pkg/errors"
)

const (
	ttsProvider = "speech synthesis"
	sttProvider = "speech recognition"

	// DefaultTTSModel supports French, English and Arabic.
	DefaultTTSModel = "eleven_multilingual_v2"
	DefaultSTTModel = "whisper-1"

	maxAudioBytes = 10 << 20
)

type TTSConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// TTSClient synthesises speech with the ElevenLabs API.
type TTSClient struct {
	cfg  TTSConfig
	doer Doer
}

func NewTTSClient(cfg TTSConfig, doer Doer) *TTSClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultTTSModel
	}
	return &TTSClient{cfg: cfg, doer: doer}
}

// Synthesize returns the MP3 audio for text, base64 encoded.
func (c *TTSClient) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": c.cfg.Model,
		"voice_settings": map[string]float64{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal tts request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s", c.cfg.BaseURL, url.PathEscape(voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.cfg.APIKey)

	resp, err := call(ctx, c.doer, ttsProvider, req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return "", apperrors.Upstream(ttsProvider, fmt.Errorf("read audio: %w", err))
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}

type STTConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// STTClient transcribes audio through an OpenAI-compatible
// /audio/transcriptions endpoint.
type STTClient struct {
	cfg  STTConfig
	doer Doer
}

func NewSTTClient(cfg STTConfig, doer Doer) *STTClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultSTTModel
	}
	return &STTClient{cfg: cfg, doer: doer}
}

// Transcribe decodes base64 audio and returns its transcription. language is
// an ISO-639-1 hint and may be empty.
func (c *STTClient) Transcribe(ctx context.Context, audioBase64, language string) (string, error) {
	audio, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		return "", apperrors.InvalidInput("audio must be base64 encoded")
	}
	if len(audio) == 0 {
		return "", apperrors.InvalidInput("audio is empty")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "recording.m4a")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	_ = mw.WriteField("model", c.cfg.Model)
	if language != "" {
		_ = mw.WriteField("language", language)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/audio/transcriptions", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return "", fmt.Errorf("build stt request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := call(ctx, c.doer, sttProvider, req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", apperrors.Upstream(sttProvider, fmt.Errorf("decode transcription: %w", err))
	}
	return strings.TrimSpace(out.Text), nil
}
