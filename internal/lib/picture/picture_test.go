package picture

import (
	"bytes"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBuffer(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))

	return &buf
}

func TestSave_ResizesToThumbnail(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	name, err := Save(pngBuffer(t, 600, 400), "holiday.png", dir)
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(name))

	img, err := imaging.Open(filepath.Join(dir, name))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.LessOrEqual(t, bounds.Dx(), 125)
	assert.LessOrEqual(t, bounds.Dy(), 125)
}

func TestSave_SmallImageKeptSmall(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	name, err := Save(pngBuffer(t, 50, 40), "tiny.png", dir)
	require.NoError(t, err)

	img, err := imaging.Open(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 125)
}

func TestSave_UniqueNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	first, err := Save(pngBuffer(t, 60, 60), "same.png", dir)
	require.NoError(t, err)

	second, err := Save(pngBuffer(t, 60, 60), "same.png", dir)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two uploads of the same file must not collide")
}

func TestSave_UnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, err := Save(pngBuffer(t, 10, 10), "script.exe", t.TempDir())
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSave_GarbageData(t *testing.T) {
	t.Parallel()

	_, err := Save(bytes.NewBufferString("not an image"), "broken.png", t.TempDir())
	require.Error(t, err)
}
