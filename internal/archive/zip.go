// Package archive packs reference photos for providers that take a bundle of faces.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Entry names inside the face archive. face1 is the leftmost person.
const (
	LeftFaceName  = "face1.jpg"
	RightFaceName = "face2.jpg"
)

var (
	dataURIPrefix   = regexp.MustCompile(`^data:image/\w+;base64,`)
	imageDataURI    = regexp.MustCompile(`^data:image/(jpeg|jpg|png|gif|webp);base64,`)
	rawBase64       = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)
	ErrEmptyPhoto   = errors.New("photo is empty")
	minRawBase64Len = 100
)

// StripDataURI removes a "data:image/...;base64," prefix if present.
func StripDataURI(photo string) string {
	return dataURIPrefix.ReplaceAllString(strings.TrimSpace(photo), "")
}

// DecodeImage decodes a data URI or raw base64 photo into bytes.
func DecodeImage(photo string) ([]byte, error) {
	clean := StripDataURI(photo)
	if clean == "" {
		return nil, ErrEmptyPhoto
	}
	data, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		// Some clients strip padding
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(clean, "="))
		if err != nil {
			return nil, fmt.Errorf("failed to decode photo: %w", err)
		}
	}
	return data, nil
}

// IsValidImageBase64 reports whether photo looks like an image payload.
func IsValidImageBase64(photo string) bool {
	if photo == "" {
		return false
	}
	if imageDataURI.MatchString(photo) {
		return true
	}
	return rawBase64.MatchString(photo) && len(photo) > minRawBase64Len
}

// CreateFaceZip builds a ZIP with the left photo first and the right photo second.
// The order has to match the left-to-right order of the detected faces.
func CreateFaceZip(leftPhoto, rightPhoto string) ([]byte, error) {
	left, err := DecodeImage(leftPhoto)
	if err != nil {
		return nil, fmt.Errorf("left photo: %w", err)
	}
	right, err := DecodeImage(rightPhoto)
	if err != nil {
		return nil, fmt.Errorf("right photo: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, entry := range []struct {
		name string
		data []byte
	}{
		{LeftFaceName, left},
		{RightFaceName, right},
	} {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   entry.name,
			Method: zip.Deflate,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", entry.name, err)
		}
		if _, err := w.Write(entry.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", entry.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize zip: %w", err)
	}

	return buf.Bytes(), nil
}
