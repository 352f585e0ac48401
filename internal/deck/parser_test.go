package deck

import "testing"

const wellFormed = `# Slide 1
Title: Neural Networks Overview
Paragraph: Covers the basics.
Bullets:
- Perceptrons are the simplest building block of a network.
- Activation functions introduce non-linearity into the model.
- Backpropagation adjusts weights from output error.

# Slide 2
Title: Training Dynamics
Paragraph: How learning proceeds.
Bullets:
- Loss surfaces guide gradient descent toward minima.
- Learning rates trade stability against speed.
- Batch size changes gradient noise characteristics.
- A fourth bullet that should be truncated away.
`

func TestParseSlidesWellFormed(t *testing.T) {
	slides := ParseSlides(wellFormed)
	if len(slides) != 2 {
		t.Fatalf("expected 2 slides got %d", len(slides))
	}
	if slides[0].Title != "Neural Networks Overview" {
		t.Fatalf("unexpected title: %q", slides[0].Title)
	}
	if slides[0].Paragraph != "Covers the basics." {
		t.Fatalf("unexpected paragraph: %q", slides[0].Paragraph)
	}
	if len(slides[1].Bullets) != 3 {
		t.Fatalf("expected excess bullets truncated to 3, got %d", len(slides[1].Bullets))
	}
	if slides[1].Bullets[0] != "Loss surfaces guide gradient descent toward minima." {
		t.Fatalf("bullet order not preserved: %q", slides[1].Bullets[0])
	}
}

func TestParseSlidesSkipsMalformedBlock(t *testing.T) {
	text := wellFormed + `
# Slide 3
Title: Missing Bullets
Paragraph: This block has no bullet lines and must be dropped.
`
	slides := ParseSlides(text)
	if len(slides) != 2 {
		t.Fatalf("malformed block must be dropped silently, got %d slides", len(slides))
	}
}

func TestParseSlidesOneGoodOneBad(t *testing.T) {
	text := `# Slide 1
Title: Good Slide
Bullets:
- one idea
- another idea
- a third idea

# Slide 2
Title: Bad Slide
- only one bullet
`
	slides := ParseSlides(text)
	if len(slides) != 1 {
		t.Fatalf("expected exactly the well-formed slide, got %d", len(slides))
	}
	if slides[0].Title != "Good Slide" {
		t.Fatalf("wrong slide kept: %q", slides[0].Title)
	}
}

func TestParseSlidesCRLFAndFence(t *testing.T) {
	text := "```\r\n# Slide 1\r\nTitle: Windows Line Endings\r\nParagraph: p\r\n- a\r\n- b\r\n- c\r\n```"
	slides := ParseSlides(text)
	if len(slides) != 1 {
		t.Fatalf("expected 1 slide got %d", len(slides))
	}
	if slides[0].Title != "Windows Line Endings" {
		t.Fatalf("unexpected title: %q", slides[0].Title)
	}
}

func TestParseSlidesFirstBlockWithoutHashPrefix(t *testing.T) {
	text := `Slide 1
Title: No Marker Prefix
- a
- b
- c
`
	slides := ParseSlides(text)
	if len(slides) != 1 {
		t.Fatalf("expected 1 slide got %d", len(slides))
	}
}

func TestParseSlidesDuplicateLabelLastWins(t *testing.T) {
	text := `# Slide 1
Title: First Attempt
Title: Final Title
Paragraph: first
paragraph: final
- a
- b
- c
`
	slides := ParseSlides(text)
	if len(slides) != 1 {
		t.Fatalf("expected 1 slide got %d", len(slides))
	}
	if slides[0].Title != "Final Title" {
		t.Fatalf("expected last title to win, got %q", slides[0].Title)
	}
	if slides[0].Paragraph != "final" {
		t.Fatalf("expected last paragraph to win, got %q", slides[0].Paragraph)
	}
}

func TestParseSlidesBoldMarkupTrimmed(t *testing.T) {
	text := `# Slide 1
Title: **Bolded Title**
Paragraph: p
- **bullet one**
- bullet two
- bullet three
`
	slides := ParseSlides(text)
	if len(slides) != 1 {
		t.Fatalf("expected 1 slide got %d", len(slides))
	}
	if slides[0].Title != "Bolded Title" {
		t.Fatalf("bold markup not trimmed: %q", slides[0].Title)
	}
	if slides[0].Bullets[0] != "bullet one" {
		t.Fatalf("bold markup not trimmed on bullet: %q", slides[0].Bullets[0])
	}
}

func TestParseSlidesNeverErrors(t *testing.T) {
	for _, text := range []string{"", "   ", "no slides here", "# Slide", "garbage\n- a\n- b\n- c"} {
		if got := ParseSlides(text); len(got) != 0 {
			t.Fatalf("expected no slides for %q, got %d", text, len(got))
		}
	}
}
