package sink

import (
	"context"

	"github.com/matzehuels/arbor/pkg/render"
)

// RenderPDF renders the scene as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, s render.Scene, opts ...Option) ([]byte, error) {
	svg, err := RenderSVG(s, opts...)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}
