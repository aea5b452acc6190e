package picture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// thumbnail bound used for every stored profile picture
const outputSize = 125

// Save stores a profile picture under dir and returns the generated
// file name. The image is scaled down to fit 125x125 before saving and
// the name is random so uploads can never collide with each other.
func Save(r io.Reader, origName, dir string) (string, error) {
	const op = "picture.Save"

	ext := strings.ToLower(filepath.Ext(origName))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return "", ErrUnsupportedFormat
	}

	img, err := imaging.Decode(r)
	if err != nil {
		return "", fmt.Errorf("%s: failed to decode image: %w", op, err)
	}

	thumb := imaging.Fit(img, outputSize, outputSize, imaging.Lanczos)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext

	if err := imaging.Save(thumb, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("%s: failed to save image: %w", op, err)
	}

	return name, nil
}
