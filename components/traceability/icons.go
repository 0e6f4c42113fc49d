package traceability

// stageGlyphs resolves symbolic stage icons to the glyphs templates print.
var stageGlyphs = map[StageIcon]string{
	IconFarm:         "🐟",
	IconProcessing:   "🏭",
	IconDistribution: "🚚",
	IconRetail:       "🏪",
}

const fallbackGlyph = "•"

// GlyphFor returns the display glyph for a stage icon.
func GlyphFor(icon StageIcon) string {
	if glyph, ok := stageGlyphs[icon]; ok {
		return glyph
	}
	return fallbackGlyph
}

// KnownStageIcon reports whether the icon has a registered glyph.
func KnownStageIcon(icon StageIcon) bool {
	_, ok := stageGlyphs[icon]
	return ok
}

func statusClass(status StepStatus) string {
	switch status {
	case StatusCompleted:
		return "status-completed"
	case StatusCurrent:
		return "status-current"
	default:
		return "status-pending"
	}
}
