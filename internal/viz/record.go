package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"
)

const (
	cellW = 8
	cellH = 16
)

// Recorder collects canvas frames and writes them out as an animated GIF.
type Recorder struct {
	frames []*image.Paletted
	delay  int
}

// NewRecorder records frames shown for delay hundredths of a second each.
func NewRecorder(delay int) *Recorder {
	if delay < 1 {
		delay = 2
	}
	return &Recorder{delay: delay}
}

func (r *Recorder) Frames() int { return len(r.frames) }

// Capture rasterizes the lit dots of c into a new frame.
func (r *Recorder) Capture(c *Canvas) {
	imgW, imgH := c.Width*cellW, c.Height*cellH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})

	dotW, dotH := cellW/2, cellH/4
	dw, dh := c.Dots()
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Save encodes the captured frames to path. Nothing is written when no
// frame was captured.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
