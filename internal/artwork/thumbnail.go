// Package artwork scales cover images for feeds and the image proxy.
package artwork

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"github.com/nfnt/resize"
)

// ThumbnailSize is the edge length of stored feed thumbnails.
const ThumbnailSize uint = 300

// MaxWidth bounds proxy resize requests.
const MaxWidth uint = 1200

// Resize decodes imageData and scales it to width pixels wide, keeping the
// aspect ratio. Images narrower than width are not enlarged. The result is
// always JPEG.
func Resize(imageData []byte, width uint) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if width > MaxWidth {
		width = MaxWidth
	}
	if uint(img.Bounds().Dx()) > width {
		img = resize.Resize(width, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateThumbnail fits the image into a ThumbnailSize square, encodes it
// as JPEG and returns it as a data URI string.
func GenerateThumbnail(imageData []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	resized := resize.Thumbnail(ThumbnailSize, ThumbnailSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 75}); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
