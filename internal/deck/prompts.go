package deck

import (
	"fmt"
	"strings"
)

const batchPromptTemplate = `You MUST output slides ONLY in this strict format. DO NOT use Markdown or any other style.

Example of EXACT required format:

# Slide 1
Title: Neural Networks Overview
Paragraph: This slide explains the basics of neural networks in 3-4 sentences.
Bullets:
- Bullet one with 10-14 words.
- Bullet two with 10-14 words.
- Bullet three with 10-14 words.

-------------------------------------

Now generate %d slides for TOPIC: "%s"

Start numbering from Slide %d.
Use this EXACT format:

# Slide %d
Title: <short title>
Paragraph: <3-4 sentence paragraph>
Bullets:
- <bullet 1>
- <bullet 2>
- <bullet 3>

DESCRIPTION (USE FOR TONE, NOT CONTENT):
%s

STRICT RULES:
- DO NOT write "# Slide X: Title". Title MUST be on "Title:" line ONLY.
- DO NOT skip "Paragraph:" label.
- DO NOT skip "Bullets:" label.
- DO NOT place bullets before the paragraph.
- DO NOT output extra sentences or Markdown.
- NO bold (** **)
- NO backticks
- NO JSON
- ONLY the exact required format.`

// BuildBatchPrompt composes the next batch prompt. When memory is non-empty
// it appends previously used titles and (capped) bullet ideas so the model is
// steered away from repeating itself. This is a best-effort hint only; the
// accumulator's dedup check is the correctness guarantee.
func BuildBatchPrompt(count int, topic string, startIndex int, description string, memory *Memory, bulletCap int) string {
	history := strings.Builder{}
	if memory != nil && !memory.Empty() {
		history.WriteString("\nPreviously used titles:\n")
		history.WriteString(strings.Join(memory.Titles(), "\n"))
		if bullets := memory.Bullets(bulletCap); len(bullets) > 0 {
			history.WriteString("\nPreviously used bullet ideas:\n")
			history.WriteString(strings.Join(bullets, "\n"))
		}
	}
	desc := description
	if history.Len() > 0 {
		desc = description + "\n" + history.String()
	}
	return fmt.Sprintf(batchPromptTemplate, count, topic, startIndex, startIndex, desc)
}
