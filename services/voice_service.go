package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/itish2003/lawgic/logger"
	"google.golang.org/api/option"
)

// Transcriber turns a short voice clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, contentType, lang string) (string, error)
}

// VoicePlaceholder is used when a clip cannot be transcribed.
func VoicePlaceholder(name string) string {
	return fmt.Sprintf("[Voice input: %s]", name)
}

// SpeechTranscriber uses Google Cloud Speech synchronous recognition.
type SpeechTranscriber struct {
	client *speech.Client
	log    *logger.Logger
}

// NewSpeechTranscriber builds a client from GOOGLE_APPLICATION_CREDENTIALS_JSON
// or GOOGLE_APPLICATION_CREDENTIALS, falling back to default credentials.
func NewSpeechTranscriber(ctx context.Context, log *logger.Logger) (*SpeechTranscriber, error) {
	c, err := speech.NewClient(ctx, clientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}
	return &SpeechTranscriber{client: c, log: log.With("service", "SpeechTranscriber")}, nil
}

func (s *SpeechTranscriber) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *SpeechTranscriber) Transcribe(ctx context.Context, audio []byte, filename, contentType, lang string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("empty audio")
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	resp, err := s.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   inferSpeechEncoding(contentType, filename),
			LanguageCode:               speechLanguage(lang),
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{AudioSource: &speechpb.RecognitionAudio_Content{Content: audio}},
	})
	if err != nil {
		return "", fmt.Errorf("speech recognize: %w", err)
	}

	var parts []string
	for _, r := range resp.GetResults() {
		alts := r.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if t := strings.TrimSpace(alts[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	s.log.Debug("transcribed voice clip", "filename", filename, "segments", len(parts))
	return strings.Join(parts, " "), nil
}

// speechLanguage maps the API language tag onto a BCP-47 speech locale.
func speechLanguage(lang string) string {
	switch l := strings.TrimSpace(lang); strings.ToLower(l) {
	case "", "en":
		return "en-IN"
	case "hi":
		return "hi-IN"
	default:
		if strings.Contains(l, "-") {
			return l
		}
		return "en-IN"
	}
}

func inferSpeechEncoding(mimeType, filename string) speechpb.RecognitionConfig_AudioEncoding {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case strings.Contains(m, "wav") || ext == ".wav":
		return speechpb.RecognitionConfig_LINEAR16
	case strings.Contains(m, "flac") || ext == ".flac":
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(m, "mp3") || strings.Contains(m, "mpeg") || ext == ".mp3":
		return speechpb.RecognitionConfig_MP3
	case strings.Contains(m, "ogg") || ext == ".ogg" || ext == ".opus":
		return speechpb.RecognitionConfig_OGG_OPUS
	case strings.Contains(m, "webm") || ext == ".webm":
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}

func clientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	opts := []option.ClientOption{}
	if creds == "" {
		return opts
	}
	if strings.HasPrefix(creds, "{") {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}
