// Package imagepipe shrinks uploaded photos until they fit a byte ceiling.
package imagepipe

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"math"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

const (
	// DefaultCeiling is the largest image the gallery accepts.
	DefaultCeiling = 1048576
	// InlineLimit bounds the base64 text of an inline photo.
	InlineLimit = 1500000

	ContentType = "image/jpeg"

	maxPasses    = 8
	startQuality = 90
	qualityStep  = 10
	qualityFloor = 45
	shrinkFactor = 0.85
)

var (
	ErrDecode         = errors.New("imagepipe: cannot decode image")
	ErrEncode         = errors.New("imagepipe: cannot encode image")
	ErrTooLarge       = fmt.Errorf("%w: still over the size ceiling", ErrEncode)
	ErrInlineTooLarge = errors.New("imagepipe: inline image too large")
)

// Encoder writes img as a lossy image at quality 1..100.
type Encoder interface {
	Encode(img image.Image, quality int) ([]byte, error)
}

// JPEGEncoder encodes with imaging's JPEG writer.
type JPEGEncoder struct{}

func (JPEGEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Pass describes one encode attempt. Size is -1 when the encode failed.
type Pass struct {
	Quality int
	Width   int
	Height  int
	Size    int
}

// Result is the pipeline output.
type Result struct {
	Data        []byte
	Name        string
	ContentType string
	// Passes is empty when the input already fit and was returned as is.
	Passes []Pass
}

// Compressed reports whether the data was re-encoded.
func (r *Result) Compressed() bool { return len(r.Passes) > 0 }

// Pipeline runs the size-bounding loop.
type Pipeline struct {
	Ceiling int
	Encoder Encoder
}

// New returns a pipeline with the JPEG encoder. A non-positive ceiling means
// DefaultCeiling.
func New(ceiling int) *Pipeline {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return &Pipeline{Ceiling: ceiling, Encoder: JPEGEncoder{}}
}

// Compress returns data unchanged when it already fits, otherwise the first
// encode that fits. Quality starts at 90 and drops by 10 while above 45;
// after that both sides shrink by 0.85 per pass at the last quality.
func (p *Pipeline) Compress(data []byte, filename, contentType string) (*Result, error) {
	if len(data) <= p.Ceiling {
		return &Result{Data: data, Name: filename, ContentType: contentType}, nil
	}

	src, err := decode(data)
	if err != nil {
		return nil, err
	}

	bounds := src.Bounds()
	width, height := float64(bounds.Dx()), float64(bounds.Dy())
	quality := startQuality

	res := &Result{Name: CompressedName(filename), ContentType: ContentType}
	var out []byte
	for pass := 0; pass < maxPasses; pass++ {
		w := max(1, int(math.Floor(width)))
		h := max(1, int(math.Floor(height)))

		encoded, encErr := p.Encoder.Encode(resize(src, w, h), quality)
		size := -1
		if encErr == nil {
			out = encoded
			size = len(encoded)
		}
		res.Passes = append(res.Passes, Pass{Quality: quality, Width: w, Height: h, Size: size})
		if encErr == nil && size <= p.Ceiling {
			break
		}

		if quality > qualityFloor {
			quality -= qualityStep
		} else {
			width *= shrinkFactor
			height *= shrinkFactor
		}
	}

	if out == nil {
		return nil, ErrEncode
	}
	if len(out) > p.Ceiling {
		return nil, ErrTooLarge
	}
	res.Data = out
	return res, nil
}

func decode(data []byte) (image.Image, error) {
	if strings.Contains(http.DetectContentType(data), "webp") {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return img, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}

func resize(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// CompressedName turns "choir.png" into "choir-compressed.jpg". Other
// extensions are kept even though the bytes are JPEG. A name without a dot
// gets "jpg": "photo" becomes "photo-compressed.jpg", never
// "photo-compressed.photo".
func CompressedName(filename string) string {
	base, ext := filename, "jpg"
	if i := strings.LastIndex(filename, "."); i >= 0 {
		base, ext = filename[:i], strings.ToLower(filename[i+1:])
		if ext == "" {
			ext = "jpg"
		}
	}
	if base == "" {
		base = "photo"
	}
	if ext == "png" {
		ext = "jpg"
	}
	return base + "-compressed." + ext
}

// EncodeInline returns data as standard base64 without a data: prefix.
func EncodeInline(data []byte) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(data)
	if len(encoded) >= InlineLimit {
		return "", ErrInlineTooLarge
	}
	return encoded, nil
}
