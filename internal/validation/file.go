package validation

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
)

// MaxUploadSize caps a single upload. The drive accepts any content type, so
// size and name are the only constraints enforced here.
const MaxUploadSize = 100 << 20 // 100MB

// ValidateUpload validates an incoming multipart upload.
func ValidateUpload(header *multipart.FileHeader) error {
	if strings.TrimSpace(header.Filename) == "" {
		return errors.New("file name is required")
	}

	if len(header.Filename) > 255 {
		return errors.New("file name is too long (max 255 characters)")
	}

	if header.Size > MaxUploadSize {
		return fmt.Errorf("file too large: maximum size is %d MB", MaxUploadSize/(1<<20))
	}

	return nil
}
