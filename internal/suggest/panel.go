package suggest

import (
	"context"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector matches the block-level elements a rich-text editor emits for
// paragraphs, list items and headings.
const blockSelector = "p, li, h1, h2, h3, h4, h5, h6, blockquote"

// Panel tracks the chosen role and the set of phrases currently considered part
// of the objective.
type Panel struct {
	catalog  *Catalog
	role     string
	phrases  []string
	selected []string
}

// NewPanel creates a panel over catalog.
func NewPanel(catalog *Catalog) *Panel {
	return &Panel{catalog: catalog}
}

// Roles lists the available roles.
func (p *Panel) Roles(ctx context.Context) ([]string, error) {
	return p.catalog.Roles(ctx)
}

// SelectRole makes role current and returns its phrases.
func (p *Panel) SelectRole(ctx context.Context, role string) ([]string, error) {
	phrases, err := p.catalog.Phrases(ctx, role)
	if err != nil {
		return nil, err
	}
	p.role = role
	p.phrases = phrases
	return phrases, nil
}

// Role returns the current role, or "" if none was selected.
func (p *Panel) Role() string {
	return p.role
}

// Phrases returns the phrases of the current role.
func (p *Panel) Phrases() []string {
	return slices.Clone(p.phrases)
}

// Selected returns the selected phrases in selection order.
func (p *Panel) Selected() []string {
	return slices.Clone(p.selected)
}

// IsSelected reports whether phrase is in the selected set.
func (p *Panel) IsSelected(phrase string) bool {
	return slices.Contains(p.selected, phrase)
}

// Toggle adds phrase to objective or takes it out again and returns the new
// objective. selected reports whether the phrase is now part of the objective.
//
// When phrase occurs in objective its first occurrence is removed together with
// the single space that joined it to the preceding (or following) text. Otherwise
// it is appended, separated from existing content by one space.
func (p *Panel) Toggle(objective, phrase string) (string, bool) {
	if phrase == "" {
		return objective, false
	}

	if idx := strings.Index(objective, phrase); idx >= 0 {
		start, end := idx, idx+len(phrase)
		switch {
		case start > 0 && objective[start-1] == ' ':
			start--
		case end < len(objective) && objective[end] == ' ':
			end++
		}
		p.selected = slices.DeleteFunc(p.selected, func(s string) bool { return s == phrase })
		return objective[:start] + objective[end:], false
	}

	if !p.IsSelected(phrase) {
		p.selected = append(p.selected, phrase)
	}
	if objective == "" {
		return phrase, true
	}
	return objective + " " + phrase, true
}

// Reconcile rebuilds the selected set from an existing objective: every
// non-empty block of text is treated as a previously selected phrase. Phrases
// that do not line up with block boundaries are not recognized. Markup that
// cannot be parsed leaves the set empty.
func (p *Panel) Reconcile(objective string) {
	p.selected = ParseSegments(objective)
}

// ParseSegments returns the trimmed, non-empty text of each block element in html.
func ParseSegments(html string) []string {
	if strings.TrimSpace(html) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var segments []string
	doc.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		// nested blocks are visited on their own
		if sel.Find(blockSelector).Length() > 0 {
			return
		}
		text := strings.TrimSpace(sel.Text())
		if text != "" && !slices.Contains(segments, text) {
			segments = append(segments, text)
		}
	})
	return segments
}
