package engine

import (
	"context"
	"image"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/observability"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/render/nodelink"
	"github.com/matzehuels/arbor/pkg/render/sink"
)

// Export formats understood by [Engine.Export].
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
)

// Formats lists every export format.
var Formats = []string{FormatSVG, FormatPNG, FormatJSON, FormatPDF, FormatDOT}

// ValidFormat reports whether format is a known export format.
func ValidFormat(format string) bool { return slices.Contains(Formats, format) }

// ExportVector snapshots the current frame as SVG, cropped to the content
// plus the export padding. Before the first layout pass it returns nil and
// no error.
func (e *Engine) ExportVector() ([]byte, error) {
	return e.Export(context.Background(), FormatSVG)
}

// ExportRaster snapshots the current frame as pixels on the theme
// background. Before the first layout pass it returns nil and no error.
func (e *Engine) ExportRaster() (image.Image, error) {
	if e.current == nil {
		return nil, nil
	}
	start := time.Now()
	img, err := sink.RenderRaster(e.Frame(), e.sinkOptions()...)
	size := 0
	if img != nil {
		b := img.Bounds()
		size = b.Dx() * b.Dy() * 4
	}
	observability.Engine().OnExport(e.id, "raster", size, time.Since(start), err)
	return img, err
}

// Export serializes the current frame in the named format. The dot format
// describes the visible tree structure rather than the frame.
func (e *Engine) Export(ctx context.Context, format string) ([]byte, error) {
	if e.current == nil {
		e.logger.Debug("export before layout", "format", format)
		return nil, nil
	}
	if !ValidFormat(format) {
		return nil, errUnknownFormat(format)
	}
	start := time.Now()
	data, err := encode(ctx, e.Frame(), format, e.sinkOptions(), e.dot)
	observability.Engine().OnExport(e.id, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("export", "format", format, "bytes", len(data))
	return data, nil
}

// ExportAll encodes one snapshot of the current frame in every requested
// format concurrently. The result maps format to bytes. Before the first
// layout pass it returns nil and no error.
func (e *Engine) ExportAll(ctx context.Context, formats []string) (map[string][]byte, error) {
	if e.current == nil {
		return nil, nil
	}
	for _, f := range formats {
		if !ValidFormat(f) {
			return nil, errUnknownFormat(f)
		}
	}

	scene := e.Frame()
	opts := e.sinkOptions()
	var dot string
	if slices.Contains(formats, FormatDOT) {
		dot = e.dot()
	}
	fixedDot := func() string { return dot }

	out := make([][]byte, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			start := time.Now()
			data, err := encode(gctx, scene, f, opts, fixedDot)
			observability.Engine().OnExport(e.id, f, len(data), time.Since(start), err)
			if err != nil {
				return errors.Wrap(errors.GetCode(err), err, "export %s", f)
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string][]byte, len(formats))
	for i, f := range formats {
		result[f] = out[i]
	}
	e.logger.Debug("export all", "formats", formats)
	return result, nil
}

func (e *Engine) dot() string {
	pal := e.Palette()
	return nodelink.ToDOT(e.tree, nodelink.Options{Palette: &pal})
}

// encode serializes scene. dot supplies the structural description for
// FormatDOT.
func encode(ctx context.Context, scene render.Scene, format string, opts []sink.Option, dot func() string) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(scene, opts...)
	case FormatPNG:
		return sink.RenderPNG(scene, opts...)
	case FormatJSON:
		return sink.RenderJSON(scene, opts...)
	case FormatPDF:
		return sink.RenderPDF(ctx, scene, opts...)
	case FormatDOT:
		return []byte(dot()), nil
	}
	return nil, errUnknownFormat(format)
}

func errUnknownFormat(format string) error {
	return errors.New(errors.ErrCodeInvalidFormat, "unknown export format %q (valid: %v)", format, Formats)
}

func (e *Engine) sinkOptions() []sink.Option {
	opts := []sink.Option{
		sink.WithPadding(e.cfg.exportPadding),
		sink.WithScale(e.cfg.exportScale),
	}
	if e.cfg.exportTransparent {
		opts = append(opts, sink.WithTransparent())
	}
	return opts
}
