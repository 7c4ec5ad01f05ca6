package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindFromMime(t *testing.T) {
	cases := []struct {
		mime string
		want FileKind
	}{
		{"image/png", KindImage},
		{"image/jpeg", KindImage},
		{"video/mp4", KindVideo},
		{"audio/mpeg", KindAudio},
		{"application/pdf", KindPdf},
		{"text/plain", KindText},
		{"text/markdown", KindText},
		{"application/json", KindText},
		{"application/javascript", KindCode},
		{"text/x-python", KindCode},
		{"application/xml", KindCode},
		{"application/msword", KindDocument},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", KindDocument},
		{"application/vnd.ms-powerpoint", KindPresentation},
		{"application/vnd.openxmlformats-officedocument.presentationml.presentation", KindPresentation},
		{"application/octet-stream", KindUnknown},
		{"", KindUnknown},
		{"IMAGE/PNG", KindImage},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, KindFromMime(tc.mime), "mime %q", tc.mime)
	}
}
