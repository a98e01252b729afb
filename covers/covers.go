// Package covers extracts cover thumbnails from book archives.
//
// Cover extraction is the canonical resource-heavy operation of a reader:
// decoding and rescaling images for a whole library at import time. An
// [Extractor] therefore runs every extraction through a concurrency gate
// with a fixed admission limit and records its latency in the performance
// journal. Neither wrapper changes the operation's outcome.
package covers

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "image/gif"  // cover decoding
	_ "image/jpeg" // cover decoding

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // cover decoding

	"github.com/pagefold/readercore/epub"
	"github.com/pagefold/readercore/gate"
	"github.com/pagefold/readercore/perf"
)

// maxThumbnailDim caps either thumbnail dimension, in pixels.
const maxThumbnailDim = 360

// Extractor extracts cover thumbnails with bounded concurrency.
type Extractor struct {
	g *gate.Gate
}

// NewExtractor returns an extractor admitting at most maxConcurrent
// simultaneous extractions.
func NewExtractor(maxConcurrent int) *Extractor {
	return &Extractor{g: gate.New(maxConcurrent)}
}

// Extract pulls the cover out of the book at bookPath, scales it to at most
// 360px on its longer side, and writes it as PNG to savePath. It returns the
// saved path. The call blocks while the extractor is at capacity.
func (e *Extractor) Extract(bookPath, savePath string) (string, error) {
	return perf.TrackWith("extract_cover", map[string]any{"book": filepath.Base(bookPath)},
		func() (string, error) {
			var saved string
			err := e.g.Do(func() error {
				var err error
				saved, err = extract(bookPath, savePath)
				return err
			})
			return saved, err
		})
}

func extract(bookPath, savePath string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(bookPath), "."))
	switch ext {
	case "epub":
		return extractEPUBCover(bookPath, savePath)
	case "cbz":
		return extractCBZCover(bookPath, savePath)
	default:
		return "", fmt.Errorf("covers: unsupported format %q", ext)
	}
}

func extractEPUBCover(bookPath, savePath string) (string, error) {
	r, err := epub.Open(bookPath)
	if err != nil {
		return "", fmt.Errorf("opening EPUB: %w", err)
	}
	defer r.Close()

	data, err := r.CoverImage()
	if err != nil {
		return "", err
	}
	return saveThumbnail(data, savePath)
}

// extractCBZCover uses the first image in the archive, by entry name, as
// comic readers do.
func extractCBZCover(bookPath, savePath string) (string, error) {
	zr, err := zip.OpenReader(bookPath)
	if err != nil {
		return "", fmt.Errorf("opening CBZ: %w", err)
	}
	defer zr.Close()

	var names []string
	byName := make(map[string]*zip.File)
	for _, f := range zr.File {
		lower := strings.ToLower(f.Name)
		if strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") ||
			strings.HasSuffix(lower, ".png") || strings.HasSuffix(lower, ".webp") {
			names = append(names, f.Name)
			byName[f.Name] = f
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("covers: no image found in %s", filepath.Base(bookPath))
	}
	sort.Strings(names)

	rc, err := byName[names[0]].Open()
	if err != nil {
		return "", fmt.Errorf("opening first page: %w", err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return "", fmt.Errorf("reading first page: %w", err)
	}
	return saveThumbnail(buf.Bytes(), savePath)
}

// saveThumbnail decodes cover bytes, downscales to the thumbnail bound when
// needed, and writes a PNG. When the bytes do not decode as an image they
// are written through untouched, leaving the consumer to deal with them.
func saveThumbnail(data []byte, savePath string) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if werr := os.WriteFile(savePath, data, 0o644); werr != nil {
			return "", fmt.Errorf("saving cover: %w", werr)
		}
		return savePath, nil
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxThumbnailDim || h > maxThumbnailDim {
		scale := float64(maxThumbnailDim) / float64(w)
		if h > w {
			scale = float64(maxThumbnailDim) / float64(h)
		}
		nw := max(1, int(float64(w)*scale+0.5))
		nh := max(1, int(float64(h)*scale+0.5))

		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.BiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	out, err := os.Create(savePath)
	if err != nil {
		return "", fmt.Errorf("creating thumbnail file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, src); err != nil {
		return "", fmt.Errorf("encoding thumbnail: %w", err)
	}
	return savePath, nil
}
