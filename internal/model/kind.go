package model

import "strings"

var codeMimeFragments = []string{
	"javascript",
	"typescript",
	"x-python",
	"x-go",
	"x-sh",
	"x-c",
	"x-java",
	"xml",
}

var documentMimeFragments = []string{
	"msword",
	"wordprocessingml",
	"rtf",
	"opendocument.text",
}

var presentationMimeFragments = []string{
	"ms-powerpoint",
	"presentationml",
	"opendocument.presentation",
}

// KindFromMime maps a declared MIME type to a file kind.
func KindFromMime(mimeType string) FileKind {
	mt := strings.ToLower(mimeType)

	switch {
	case strings.HasPrefix(mt, "image/"):
		return KindImage
	case strings.HasPrefix(mt, "video/"):
		return KindVideo
	case strings.HasPrefix(mt, "audio/"):
		return KindAudio
	case mt == "application/pdf":
		return KindPdf
	}

	for _, frag := range presentationMimeFragments {
		if strings.Contains(mt, frag) {
			return KindPresentation
		}
	}
	for _, frag := range documentMimeFragments {
		if strings.Contains(mt, frag) {
			return KindDocument
		}
	}
	for _, frag := range codeMimeFragments {
		if strings.Contains(mt, frag) {
			return KindCode
		}
	}

	if strings.HasPrefix(mt, "text/") || strings.Contains(mt, "json") {
		return KindText
	}

	return KindUnknown
}
