package pdfexport

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
)

// Letterhead is an image drawn at the top of the first page.
type Letterhead struct {
	Data      []byte
	ImageType string // PNG, JPG or GIF
}

// LoadLetterhead reads the letterhead image once, at startup. An empty path
// or a missing file returns nil with no error: the document is rendered
// without a letterhead.
func LoadLetterhead(path string) (*Letterhead, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read letterhead %s: %w", path, err)
	}
	imageType, err := detectImageType(data)
	if err != nil {
		return nil, fmt.Errorf("letterhead %s: %w", path, err)
	}
	return &Letterhead{Data: data, ImageType: imageType}, nil
}

func detectImageType(data []byte) (string, error) {
	switch ct := http.DetectContentType(data); ct {
	case "image/png":
		return "PNG", nil
	case "image/jpeg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	default:
		return "", fmt.Errorf("unsupported image type %q", ct)
	}
}
