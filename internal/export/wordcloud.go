package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"path/filepath"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"musictaste/internal/fileutil"
)

// CloudOptions controls word cloud layout.
type CloudOptions struct {
	Radius   int
	Padding  int
	FontMin  int
	FontMax  int
	MaxWords int
}

// DefaultCloudOptions returns the stock layout: a 600px disc, 14-56pt text.
func DefaultCloudOptions() CloudOptions {
	return CloudOptions{
		Radius:   300,
		Padding:  3,
		FontMin:  14,
		FontMax:  56,
		MaxWords: 300,
	}
}

func (o CloudOptions) validate() error {
	switch {
	case o.Radius <= 0:
		return errors.New("radius must be positive")
	case o.Padding < 0:
		return errors.New("padding must not be negative")
	case o.FontMin <= 0:
		return errors.New("minimum font size must be positive")
	case o.FontMax < o.FontMin:
		return errors.New("maximum font size must be at least the minimum")
	}
	return nil
}

const (
	gradientSteps = 30
	// Archimedean spiral r = spiralSpacing * theta, sampled every arcStep pixels.
	spiralSpacing = 1.0
	arcStep       = 4.0
)

var (
	cloudGreen      = color.RGBA{R: 30, G: 215, B: 96, A: 255}
	cloudWhite      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	cloudBackground = color.RGBA{A: 255}
)

var boldFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(gobold.TTF)
})

// Gradient returns steps colours blending linearly from one colour to another.
func Gradient(from, to color.RGBA, steps int) []color.RGBA {
	if steps < 2 {
		return []color.RGBA{from}
	}
	out := make([]color.RGBA, steps)
	for i := range out {
		t := float64(i) / float64(steps-1)
		out[i] = color.RGBA{
			R: lerp(from.R, to.R, t),
			G: lerp(from.G, to.G, t),
			B: lerp(from.B, to.B, t),
			A: lerp(from.A, to.A, t),
		}
	}
	return out
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// TitleCaseLabels title-cases every word and merges counts of labels that
// collapse to the same text.
func TitleCaseLabels(words map[string]int) map[string]int {
	caser := cases.Title(language.English)
	out := make(map[string]int, len(words))
	for word, count := range words {
		out[caser.String(word)] += count
	}
	return out
}

// RenderWordCloud lays out the most frequent words inside a disc. Words that
// find no free spot are dropped. It returns the image and the number of
// words drawn.
func RenderWordCloud(ctx context.Context, words map[string]int, opts CloudOptions) (*image.RGBA, int, error) {
	if err := opts.validate(); err != nil {
		return nil, 0, err
	}
	parsed, err := boldFont()
	if err != nil {
		return nil, 0, fmt.Errorf("parse font: %w", err)
	}

	side := 2 * opts.Radius
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), image.NewUniform(cloudBackground), image.Point{}, draw.Src)

	rows := SortedRows(words, true)
	if opts.MaxWords > 0 && len(rows) > opts.MaxWords {
		rows = rows[:opts.MaxWords]
	}
	if len(rows) == 0 {
		return img, 0, nil
	}
	maxCount, minCount := rows[0].Value, rows[len(rows)-1].Value

	faces := map[int]font.Face{}
	defer func() {
		for _, face := range faces {
			_ = face.Close()
		}
	}()
	palette := Gradient(cloudGreen, cloudWhite, gradientSteps)
	centre := image.Pt(opts.Radius, opts.Radius)

	var placed []image.Rectangle
	for i, row := range rows {
		if i%16 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}
		if row.Key == "" {
			continue
		}
		weight := sqrtWeight(row.Value, minCount, maxCount)
		size := opts.FontMin + int(math.Round(weight*float64(opts.FontMax-opts.FontMin)))

		face, ok := faces[size]
		if !ok {
			face, err = opentype.NewFace(parsed, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
			if err != nil {
				return nil, 0, fmt.Errorf("font face %dpt: %w", size, err)
			}
			faces[size] = face
		}

		metrics := face.Metrics()
		ascent := metrics.Ascent.Ceil()
		width := font.MeasureString(face, row.Key).Ceil() + 2*opts.Padding
		height := ascent + metrics.Descent.Ceil() + 2*opts.Padding

		box, ok := spiralPlace(width, height, centre, opts.Radius, placed)
		if !ok {
			continue
		}
		placed = append(placed, box)

		shade := palette[int(math.Round((1-weight)*float64(gradientSteps-1)))]
		drawer := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(shade),
			Face: face,
			Dot:  fixed.P(box.Min.X+opts.Padding, box.Min.Y+opts.Padding+ascent),
		}
		drawer.DrawString(row.Key)
	}
	return img, len(placed), nil
}

// sqrtWeight maps count into [0, 1] on a square-root scale.
func sqrtWeight(count, minCount, maxCount int) float64 {
	if maxCount <= minCount {
		return 1
	}
	low, high := math.Sqrt(float64(minCount)), math.Sqrt(float64(maxCount))
	return (math.Sqrt(float64(count)) - low) / (high - low)
}

// spiralPlace walks outward from centre until a w x h box fits inside the
// disc without overlapping any placed box.
func spiralPlace(w, h int, centre image.Point, radius int, placed []image.Rectangle) (image.Rectangle, bool) {
	if w > 2*radius || h > 2*radius {
		return image.Rectangle{}, false
	}
	for theta := 0.0; ; {
		r := spiralSpacing * theta
		if r > float64(radius) {
			return image.Rectangle{}, false
		}
		x := centre.X + int(math.Round(r*math.Cos(theta))) - w/2
		y := centre.Y + int(math.Round(r*math.Sin(theta))) - h/2
		box := image.Rect(x, y, x+w, y+h)
		if insideDisc(box, centre, radius) && !overlapsAny(box, placed) {
			return box, true
		}
		theta += arcStep / math.Max(r, arcStep)
	}
}

func insideDisc(box image.Rectangle, centre image.Point, radius int) bool {
	limit := radius * radius
	for _, p := range []image.Point{box.Min, image.Pt(box.Max.X, box.Min.Y), image.Pt(box.Min.X, box.Max.Y), box.Max} {
		dx, dy := p.X-centre.X, p.Y-centre.Y
		if dx*dx+dy*dy > limit {
			return false
		}
	}
	return true
}

func overlapsAny(box image.Rectangle, placed []image.Rectangle) bool {
	for _, other := range placed {
		if box.Overlaps(other) {
			return true
		}
	}
	return false
}

// WriteWordCloud renders words and writes the PNG to dir/filename.
func WriteWordCloud(ctx context.Context, dir, filename string, words map[string]int, opts CloudOptions) (string, error) {
	img, _, err := RenderWordCloud(ctx, words, opts)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
