package deck

import "strings"

// SlideBulletCount is the fixed bullet count a slide carries after
// acceptance. Excess bullets are truncated in block order.
const SlideBulletCount = 3

type Slide struct {
	Title     string   `json:"title"`
	Paragraph string   `json:"paragraph"`
	Bullets   []string `json:"bullets"`
}

// Request is one caller-facing generation request. Immutable once validated.
type Request struct {
	Topic       string `json:"topic"`
	Description string `json:"description,omitempty"`
	SlideCount  int    `json:"slides"`
}

// Memory is the per-request dedup state. Normalized titles gate acceptance;
// normalized bullets only steer prompts. Both grow monotonically for the
// lifetime of one request and keep insertion order, so the steering blocks in
// consecutive prompts are stable and reproducible.
type Memory struct {
	titles     map[string]struct{}
	bullets    map[string]struct{}
	titleOrder []string
	bulletList []string
}

func NewMemory() *Memory {
	return &Memory{
		titles:  map[string]struct{}{},
		bullets: map[string]struct{}{},
	}
}

// Normalize lower-cases and trims a title or bullet for dedup comparison.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (m *Memory) SeenTitle(title string) bool {
	_, ok := m.titles[Normalize(title)]
	return ok
}

// Observe records an accepted slide.
func (m *Memory) Observe(s Slide) {
	t := Normalize(s.Title)
	if _, ok := m.titles[t]; !ok {
		m.titles[t] = struct{}{}
		m.titleOrder = append(m.titleOrder, t)
	}
	for _, b := range s.Bullets {
		n := Normalize(b)
		if _, ok := m.bullets[n]; ok {
			continue
		}
		m.bullets[n] = struct{}{}
		m.bulletList = append(m.bulletList, n)
	}
}

func (m *Memory) Empty() bool { return len(m.titleOrder) == 0 }

func (m *Memory) Titles() []string { return m.titleOrder }

// Bullets returns at most limit normalized bullets in insertion order. The
// cap keeps prompts bounded; the acceptance-time sets stay unbounded on
// purpose (the hint is lossy, the correctness check is not).
func (m *Memory) Bullets(limit int) []string {
	if limit <= 0 || limit >= len(m.bulletList) {
		return m.bulletList
	}
	return m.bulletList[:limit]
}
