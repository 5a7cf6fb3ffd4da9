// Package display turns automaton generations into brightness values and
// drives a row-multiplexed LED matrix from them.
package display

import "github.com/sarchlab/lifematrix/life"

// BitDepth is the number of brightness bits per pixel.
const BitDepth = 4

// MaxBrightness is the brightest value a pixel can hold.
const MaxBrightness uint8 = 1<<BitDepth - 1

// OnBrightness is the brightness given to live cells.
const OnBrightness = MaxBrightness

// Framebuffer holds one brightness value per LED.
type Framebuffer [life.Rows][life.Cols]uint8

// Render writes the committed generation of g into fb: OnBrightness for live
// cells and 0 for dead ones.
func Render(g *life.Grid, fb *Framebuffer) {
	for row := 0; row < life.Rows; row++ {
		for col := 0; col < life.Cols; col++ {
			if g.Alive(row, col) {
				fb[row][col] = OnBrightness
			} else {
				fb[row][col] = 0
			}
		}
	}
}
