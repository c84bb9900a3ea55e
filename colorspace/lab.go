package colorspace

import (
	"image"
	"image/color"
	"math"
)

// LabAdapter converts sRGB images to CIELAB and back.
//
// Channels are encoded to 8 bits so that exact-equality frequency counting
// over uniform-space colors is well defined: L* in [0,100] maps to
// [0,255], a* and b* are offset by 128 and clamped. This matches the
// common 8-bit Lab convention used by image processing libraries.
type LabAdapter struct{}

var _ Adapter = LabAdapter{}

// D65 reference white.
const (
	refX = 0.95047
	refY = 1.00000
	refZ = 1.08883
)

// ToUniformSpace converts img to 8-bit encoded CIELAB.
func (LabAdapter) ToUniformSpace(img image.Image) *Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := NewImage(w, h)

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			l, a, bb := rgbToLab(uint8(r>>8), uint8(g>>8), uint8(b>>8))
			out.Pix[i] = encodeL(l)
			out.Pix[i+1] = encodeAB(a)
			out.Pix[i+2] = encodeAB(bb)
			i += 3
		}
	}

	return out
}

// FromUniformSpace converts an encoded CIELAB image back to sRGB.
func (LabAdapter) FromUniformSpace(m *Image) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))

	i := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			l := float64(m.Pix[i]) * 100.0 / 255.0
			a := float64(m.Pix[i+1]) - 128.0
			bb := float64(m.Pix[i+2]) - 128.0
			r, g, b := labToRGB(l, a, bb)
			out.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
			i += 3
		}
	}

	return out
}

func encodeL(l float64) uint8 {
	return clampByte(l * 255.0 / 100.0)
}

func encodeAB(v float64) uint8 {
	return clampByte(v + 128.0)
}

func clampByte(v float64) uint8 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

// rgbToLab converts 8-bit sRGB to CIELAB (D65 illuminant).
func rgbToLab(r, g, b uint8) (float64, float64, float64) {
	rLin := srgbToLinear(float64(r) / 255.0)
	gLin := srgbToLinear(float64(g) / 255.0)
	bLin := srgbToLinear(float64(b) / 255.0)

	x := 0.4124564*rLin + 0.3575761*gLin + 0.1804375*bLin
	y := 0.2126729*rLin + 0.7151522*gLin + 0.0721750*bLin
	z := 0.0193339*rLin + 0.1191920*gLin + 0.9503041*bLin

	fx := labF(x / refX)
	fy := labF(y / refY)
	fz := labF(z / refZ)

	return 116.0*fy - 16.0, 500.0 * (fx - fy), 200.0 * (fy - fz)
}

// labToRGB converts CIELAB back to 8-bit sRGB.
func labToRGB(l, a, b float64) (uint8, uint8, uint8) {
	fy := (l + 16.0) / 116.0
	fx := fy + a/500.0
	fz := fy - b/200.0

	x := refX * labFInv(fx)
	y := refY * labFInv(fy)
	z := refZ * labFInv(fz)

	rLin := 3.2404542*x - 1.5371385*y - 0.4985314*z
	gLin := -0.9692660*x + 1.8760108*y + 0.0415560*z
	bLin := 0.0556434*x - 0.2040259*y + 1.0572252*z

	return clampByte(linearToSRGB(rLin) * 255.0),
		clampByte(linearToSRGB(gLin) * 255.0),
		clampByte(linearToSRGB(bLin) * 255.0)
}

func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func linearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1.0/2.4) - 0.055
}

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3.0*delta*delta) + 4.0/29.0
}

func labFInv(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta {
		return t * t * t
	}
	return 3.0 * delta * delta * (t - 4.0/29.0)
}
