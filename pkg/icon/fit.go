package icon

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Fit scales src to fit inside box keeping its aspect ratio, and centers it
// on a transparent box-sized canvas. Larger images are shrunk and smaller
// ones enlarged.
func Fit(src image.Image, box image.Point) *image.NRGBA {
	dst := image.NewNRGBA(image.Rectangle{Max: box})
	sb := src.Bounds()
	if sb.Empty() || box.X <= 0 || box.Y <= 0 {
		return dst
	}

	size := fitSize(sb.Size(), box)
	at := image.Pt((box.X-size.X)/2, (box.Y-size.Y)/2)
	target := image.Rectangle{Min: at, Max: at.Add(size)}

	if size == sb.Size() {
		copyNRGBA(dst, target.Min, toNRGBA(src))
		return dst
	}

	var scaler draw.Interpolator = draw.CatmullRom
	if size.X > sb.Dx() || size.Y > sb.Dy() {
		scaler = draw.ApproxBiLinear
	}
	scaled := image.NewRGBA(image.Rectangle{Max: size})
	scaler.Scale(scaled, scaled.Bounds(), src, sb, draw.Src, nil)
	unpremultiply(dst, target.Min, scaled)
	return dst
}

// fitSize is the contain-fit size of src in box, never smaller than 1x1.
func fitSize(src, box image.Point) image.Point {
	scale := math.Min(float64(box.X)/float64(src.X), float64(box.Y)/float64(src.Y))
	w := int(math.Round(float64(src.X) * scale))
	h := int(math.Round(float64(src.Y) * scale))
	return image.Pt(min(max(1, w), box.X), min(max(1, h), box.Y))
}

// ApplyTint blends every visible pixel of img toward t in place. Alpha and
// fully transparent pixels are left alone.
func ApplyTint(img *image.NRGBA, t Tint) {
	if t.Strength == 0 {
		return
	}
	s := int(t.Strength)
	target := [3]int{int(t.Color.R), int(t.Color.G), int(t.Color.B)}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i+3 < len(row); i += 4 {
			if row[i+3] == 0 {
				continue
			}
			for c := 0; c < 3; c++ {
				v := int(row[i+c])
				row[i+c] = uint8(v + (target[c]-v)*s/255)
			}
		}
	}
}

func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	out := image.NewNRGBA(image.Rectangle{Max: b.Size()})
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

func copyNRGBA(dst *image.NRGBA, at image.Point, src *image.NRGBA) {
	sb := src.Bounds()
	for y := 0; y < sb.Dy(); y++ {
		from := src.Pix[src.PixOffset(sb.Min.X, sb.Min.Y+y):src.PixOffset(sb.Max.X, sb.Min.Y+y)]
		copy(dst.Pix[dst.PixOffset(at.X, at.Y+y):], from)
	}
}

func unpremultiply(dst *image.NRGBA, at image.Point, src *image.RGBA) {
	sb := src.Bounds()
	for y := 0; y < sb.Dy(); y++ {
		for x := 0; x < sb.Dx(); x++ {
			i := src.PixOffset(sb.Min.X+x, sb.Min.Y+y)
			j := dst.PixOffset(at.X+x, at.Y+y)
			a := src.Pix[i+3]
			if a == 0 {
				continue
			}
			for c := 0; c < 3; c++ {
				dst.Pix[j+c] = uint8(min(255, (int(src.Pix[i+c])*255+int(a)/2)/int(a)))
			}
			dst.Pix[j+3] = a
		}
	}
}
