package deck

import "strings"

// ParseSlides parses raw provider text into as many valid slides as can be
// recovered, skipping the rest. It never returns an error: the upstream
// generator is instructed to follow the grammar but not guaranteed to comply,
// so this is a tolerant recognizer. Strictness lives in the acceptance
// predicate (non-empty title, at least 3 bullets), not in the lexer.
func ParseSlides(text string) []Slide {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = stripCodeFence(text)

	slides := make([]Slide, 0, 8)
	for _, block := range splitSlideBlocks(text) {
		if s, ok := parseBlock(block); ok {
			slides = append(slides, s)
		}
	}
	return slides
}

// splitSlideBlocks splits on "# Slide" marker lines. The first chunk may lack
// the "# " prefix when the model drops it, so any chunk beginning with
// "slide" is accepted too.
func splitSlideBlocks(text string) []string {
	parts := strings.Split("\n"+text, "\n# Slide")
	blocks := make([]string, 0, len(parts))
	for _, chunk := range parts {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(chunk), "slide") || startsWithDigit(chunk) {
			blocks = append(blocks, chunk)
		}
	}
	return blocks
}

func parseBlock(block string) (Slide, bool) {
	var s Slide
	for _, ln := range strings.Split(block, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}
		lower := strings.ToLower(ln)
		switch {
		case strings.HasPrefix(lower, "title:"):
			// Last-wins when the model emits duplicate labels.
			s.Title = cleanValue(ln[len("title:"):])
		case strings.HasPrefix(lower, "paragraph:"):
			s.Paragraph = cleanValue(ln[len("paragraph:"):])
		case strings.HasPrefix(ln, "-"):
			if b := cleanValue(ln[1:]); b != "" {
				s.Bullets = append(s.Bullets, b)
			}
		}
	}
	if s.Title == "" || len(s.Bullets) < SlideBulletCount {
		return Slide{}, false
	}
	s.Bullets = s.Bullets[:SlideBulletCount]
	return s, true
}

// cleanValue trims whitespace and stray bold markup the model sometimes adds
// despite instructions.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "**")
	v = strings.TrimSuffix(v, "**")
	return strings.TrimSpace(v)
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```markdown")
		s = strings.TrimPrefix(s, "```text")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

func startsWithDigit(s string) bool {
	return len(s) > 0 && s[0] >= '0' && s[0] <= '9'
}
