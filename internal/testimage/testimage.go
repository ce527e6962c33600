// Package testimage generates synthetic photographs for tests and fixtures.
package testimage

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
)

// Blocks returns a w×h image tiled with an 8×8 grid of colors chosen by
// layout, overlaid with per-pixel noise chosen by grain. Images sharing a
// layout are perceptually near-identical whatever their grain; the noise
// keeps encoded files realistically large.
func Blocks(w, h int, layout, grain int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(layout))
	var palette [8][8][3]uint8
	for i := range palette {
		for j := range palette[i] {
			for k := range palette[i][j] {
				palette[i][j][k] = uint8(24 + rng.Intn(208))
			}
		}
	}

	noise := rand.New(rand.NewSource(grain))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		by := y * 8 / h
		for x := 0; x < w; x++ {
			c := palette[by][x*8/w]
			o := x * 4
			for k := 0; k < 3; k++ {
				row[o+k] = uint8(int(c[k]) + noise.Intn(25) - 12)
			}
			row[o+3] = 255
		}
	}
	return img
}

// Solid returns a flat gray image, which encodes to a very small file.
func Solid(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// Gradient returns a smooth horizontal/vertical gradient.
func Gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

// JPEG encodes img at the given quality.
func JPEG(img image.Image, quality int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		panic("testimage: " + err.Error())
	}
	return buf.Bytes()
}

// PNG encodes img.
func PNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("testimage: " + err.Error())
	}
	return buf.Bytes()
}

// WriteJPEG encodes img to path.
func WriteJPEG(path string, img image.Image, quality int) error {
	return os.WriteFile(path, JPEG(img, quality), 0o644)
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	return os.WriteFile(path, PNG(img), 0o644)
}
