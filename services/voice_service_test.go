package services

import (
	"testing"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/stretchr/testify/assert"
)

func TestSpeechLanguage(t *testing.T) {
	tests := map[string]string{
		"":      "en-IN",
		"en":    "en-IN",
		"HI":    "hi-IN",
		"ta-IN": "ta-IN",
		"fr":    "en-IN",
	}
	for in, want := range tests {
		assert.Equal(t, want, speechLanguage(in), in)
	}
}

func TestInferSpeechEncoding(t *testing.T) {
	tests := []struct {
		mime, file string
		want       speechpb.RecognitionConfig_AudioEncoding
	}{
		{"audio/wav", "", speechpb.RecognitionConfig_LINEAR16},
		{"", "clip.FLAC", speechpb.RecognitionConfig_FLAC},
		{"audio/mpeg", "clip", speechpb.RecognitionConfig_MP3},
		{"application/octet-stream", "note.opus", speechpb.RecognitionConfig_OGG_OPUS},
		{"audio/webm;codecs=opus", "", speechpb.RecognitionConfig_WEBM_OPUS},
		{"", "clip.aac", speechpb.RecognitionConfig_ENCODING_UNSPECIFIED},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inferSpeechEncoding(tt.mime, tt.file), tt.mime+tt.file)
	}
}

func TestClientOptionsFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	assert.Empty(t, clientOptionsFromEnv())

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/secrets/sa.json")
	assert.Len(t, clientOptionsFromEnv(), 1)

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS_JSON", `{"type":"service_account"}`)
	assert.Len(t, clientOptionsFromEnv(), 1)
}

func TestVoicePlaceholder(t *testing.T) {
	assert.Equal(t, "[Voice input: memo.wav]", VoicePlaceholder("memo.wav"))
}
