package ocr

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"

	// Screenshot uploads arrive as PNG or JPEG; some Android tools save BMP.
	_ "golang.org/x/image/bmp"
	_ "image/jpeg"
	_ "image/png"
)

// PrepareImage decodes raw upload bytes, fixes EXIF orientation, downscales
// anything wider than maxWidth (0 disables scaling), and re-encodes as PNG
// for the detection engine.
func PrepareImage(data []byte, maxWidth int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
