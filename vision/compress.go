package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxDimension caps the longest side before JPEG re-encoding; vision models
// gain nothing from larger inputs.
const maxDimension = 2000

// compressImage re-encodes an oversized image as JPEG, downscaling first
// and then stepping quality down until it fits under limit. Transparency
// is flattened onto white. Returns the original data and ok=false when the
// image cannot be decoded or never fits.
func compressImage(data []byte, limit int) ([]byte, string, bool) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, "", false
	}

	img := flattenToRGB(src)

	bounds := img.Bounds()
	longest := bounds.Dx()
	if bounds.Dy() > longest {
		longest = bounds.Dy()
	}
	if longest > maxDimension {
		ratio := float64(maxDimension) / float64(longest)
		img = scale(img, int(float64(bounds.Dx())*ratio), int(float64(bounds.Dy())*ratio))
	}

	var buf bytes.Buffer
	for quality := 85; quality >= 20; quality -= 10 {
		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return data, "", false
		}
		if buf.Len() <= limit {
			return buf.Bytes(), "jpeg", true
		}
	}
	return data, "", false
}

// flattenToRGB composites the image over a white background, discarding
// any alpha channel so JPEG encoding is lossless with respect to color.
func flattenToRGB(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Over)
	return dst
}

func scale(src *image.RGBA, w, h int) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
