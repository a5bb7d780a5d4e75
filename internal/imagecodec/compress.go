package imagecodec

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

const (
	startQuality   = 90
	minQuality     = 30
	qualityStep    = 10
	shrinkFactor   = 0.8
	minDimension   = 512
	maxAttempts    = 10
	defaultMaxSide = 2048
)

// CompressOptions bounds CompressToBudget.
type CompressOptions struct {
	BudgetBytes  int
	MaxDimension int
}

// CompressToBudget shrinks data until it fits BudgetBytes. Data already within
// budget is returned unchanged once its header decodes. PNG stays PNG and every
// other format becomes JPEG. Quality is lowered first; once at the floor the
// bounding box shrinks and quality resets. When the budget cannot be met the
// last attempt is returned.
func CompressToBudget(data []byte, opts CompressOptions) ([]byte, Format, error) {
	format, err := Detect(data)
	if err != nil {
		return nil, "", err
	}
	if opts.BudgetBytes <= 0 || len(data) <= opts.BudgetBytes {
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return nil, "", fmt.Errorf("decode %s header: %w", format, err)
		}
		return data, format, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", format, err)
	}

	out := FormatJPEG
	if format == FormatPNG {
		out = FormatPNG
	}

	side := opts.MaxDimension
	if side <= 0 {
		side = defaultMaxSide
	}
	quality := startQuality

	var best []byte
	for attempt := 0; attempt < maxAttempts; attempt++ {
		best, err = encodeWithin(img, out, side, quality)
		if err != nil {
			return nil, "", err
		}
		if len(best) <= opts.BudgetBytes {
			break
		}

		// PNG ignores quality, so only the bounding box can help.
		if out == FormatJPEG && quality > minQuality {
			quality -= qualityStep
			continue
		}
		if side <= minDimension {
			break
		}
		side = max(minDimension, int(float64(side)*shrinkFactor))
		quality = startQuality
	}
	return best, out, nil
}

func encodeWithin(img image.Image, format Format, side, quality int) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() > side || b.Dy() > side {
		img = imaging.Fit(img, side, side, imaging.Lanczos)
	}

	var buf bytes.Buffer
	var err error
	if format == FormatPNG {
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	} else {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
