// Package prompt assembles the provider prompt for a thumbnail request.
// Every enum tag maps to a fixed clause so the wording the provider sees
// is decided here, not scattered across handlers.
package prompt

import (
	"fmt"
	"strings"

	"github.com/thumblifyapp/thumblify-server/internal/domain"
	"github.com/thumblifyapp/thumblify-server/internal/errors"
)

// Params carries everything the builder folds into a prompt.
type Params struct {
	Title       string
	Style       domain.Style
	AspectRatio domain.AspectRatio
	ColorScheme domain.ColorScheme
	TextOverlay string
	Details     string
}

var styleClauses = map[domain.Style]string{
	domain.StyleMinimalist:   "Design a clean, minimalist video thumbnail with generous negative space and a single striking focal element",
	domain.StyleBold:         "Design a high-impact video thumbnail with oversized shapes and strong contrast that grabs attention instantly",
	domain.StyleCinematic:    "Design a dramatic, film-still video thumbnail with moody lighting and a widescreen feel",
	domain.StylePlayful:      "Design a fun, energetic video thumbnail with exaggerated expressions and lively shapes",
	domain.StyleRetro:        "Design a vintage-inspired video thumbnail with distressed textures and nostalgic color grading",
	domain.StyleFuturistic:   "Design a sleek, high-tech video thumbnail with glowing accents and a sci-fi atmosphere",
	domain.StyleProfessional: "Design a polished, professional video thumbnail with balanced composition and restrained styling",
	domain.StyleGrunge:       "Design a gritty, textured video thumbnail with rough edges and raw street-art energy",
}

var colorClauses = map[domain.ColorScheme]string{
	domain.ColorSchemeVibrant:    "a saturated, high-energy color palette",
	domain.ColorSchemePastel:     "a soft pastel color palette",
	domain.ColorSchemeMonochrome: "a single-hue monochrome palette",
	domain.ColorSchemeDark:       "a deep, low-key palette with strong shadows",
	domain.ColorSchemeWarm:       "a warm palette of reds, oranges, and golds",
	domain.ColorSchemeCool:       "a cool palette of blues, teals, and violets",
	domain.ColorSchemeNeon:       "an electric neon palette glowing against a dark background",
	domain.ColorSchemeEarthy:     "a natural, earthy palette of greens and browns",
}

// Build assembles the prompt sent to the image provider.
// Unknown enum values are validation errors; the prompt never carries
// an "undefined" fragment to the provider.
func Build(p Params) (string, error) {
	styleClause, ok := styleClauses[p.Style]
	if !ok {
		return "", errors.Validationf("unknown style %q", string(p.Style))
	}
	if !p.AspectRatio.Valid() {
		return "", errors.Validationf("unknown aspect ratio %q", string(p.AspectRatio))
	}

	segments := make([]string, 0, 5)
	segments = append(segments, fmt.Sprintf("%s for a video titled \"%s\".", styleClause, p.Title))

	if p.ColorScheme != "" {
		colorClause, ok := colorClauses[p.ColorScheme]
		if !ok {
			return "", errors.Validationf("unknown color scheme %q", string(p.ColorScheme))
		}
		segments = append(segments, fmt.Sprintf("Use %s.", colorClause))
	}

	if p.TextOverlay != "" {
		segments = append(segments, fmt.Sprintf("Overlay the exact text \"%s\" in large, highly legible lettering.", p.TextOverlay))
	}

	if p.Details != "" {
		detail := "Additional details from the creator: " + p.Details
		if !strings.HasSuffix(detail, ".") {
			detail += "."
		}
		segments = append(segments, detail)
	}

	segments = append(segments, fmt.Sprintf("The thumbnail must stay readable at small preview sizes and fill a %s aspect ratio exactly.", p.AspectRatio))

	return strings.Join(segments, " "), nil
}
