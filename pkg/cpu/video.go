package cpu

import (
	"image"
	"image/png"
	"os"

	"gohack/pkg/grid"
)

// Screen geometry: 512x256 monochrome pixels, one bit per pixel, packed
// 16 pixels per word, 32 words per row.
const (
	ScreenWidth    = 512
	ScreenHeight   = 256
	ScreenRowWords = 32
)

// GetFramebufferRGBA decodes the screen memory into a 512x256 RGBA8888
// byte slice (length 512*256*4). A set bit is a black pixel on a white
// background, matching the reference hardware.
func (c *CPU) GetFramebufferRGBA() []byte {
	pixels := make([]byte, ScreenWidth*ScreenHeight*4)

	for wordIdx := 0; wordIdx < ScreenSize; wordIdx++ {
		word := c.RAM[ScreenBase+wordIdx]
		wx, y := grid.GetGridCoords(wordIdx, ScreenRowWords)
		for bit := 0; bit < 16; bit++ {
			x := wx*16 + bit
			var v byte = 0xFF
			if word&(1<<bit) != 0 {
				v = 0x00
			}
			p := (y*ScreenWidth + x) * 4
			pixels[p+0] = v
			pixels[p+1] = v
			pixels[p+2] = v
			pixels[p+3] = 0xFF
		}
	}

	return pixels
}

// GetFramebufferImage returns the current screen contents as an *image.RGBA.
func (c *CPU) GetFramebufferImage() *image.RGBA {
	return &image.RGBA{
		Pix:    c.GetFramebufferRGBA(),
		Stride: ScreenWidth * 4,
		Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
	}
}

// SaveScreenshot encodes the current screen as a PNG and writes it to filename.
func (c *CPU) SaveScreenshot(filename string) error {
	img := c.GetFramebufferImage()
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
