package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/dragmate/dragmate/pkg/dom"
)

// Document resolves selectors against the session's current page. Matched
// elements are "adopted": tagged page-side with a stable data attribute that
// all later addressing goes through.
type Document struct {
	s *Session
}

var _ dom.Document = (*Document)(nil)

// Query returns the first match for selector, or nil if nothing matches.
func (d *Document) Query(ctx context.Context, selector string) (dom.Element, error) {
	ids, err := d.adopt(ctx, "", selector)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &Element{s: d.s, id: ids[0]}, nil
}

// QueryAll returns all matches in document order, bounded by scope when
// scope is non-nil. No matches yields an empty slice.
func (d *Document) QueryAll(ctx context.Context, scope dom.Element, selector string) ([]dom.Element, error) {
	scopeID := ""
	if scope != nil {
		scopeID = scope.ID()
	}
	ids, err := d.adopt(ctx, scopeID, selector)
	if err != nil {
		return nil, err
	}
	elements := make([]dom.Element, 0, len(ids))
	for _, id := range ids {
		elements = append(elements, &Element{s: d.s, id: id})
	}
	return elements, nil
}

func (d *Document) adopt(ctx context.Context, scopeID, selector string) ([]string, error) {
	var ids []string
	expr := fmt.Sprintf(`window.__dragmate.adopt(%q, %q)`, scopeID, selector)
	if err := d.s.run(ctx, chromedp.Evaluate(expr, &ids)); err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return ids, nil
}
