package suggest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	roles       []string
	phrases     map[string][]string
	roleCalls   atomic.Int32
	phraseCalls atomic.Int32
	err         error
}

func (f *fakeSource) ListRoles(_ context.Context) ([]string, error) {
	f.roleCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.roles, nil
}

func (f *fakeSource) ListPhrases(_ context.Context, role string) ([]string, error) {
	f.phraseCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.phrases[role], nil
}

func newTestPanel(t *testing.T, src *fakeSource) *Panel {
	t.Helper()
	catalog, err := NewCatalog(src)
	require.NoError(t, err)
	return NewPanel(catalog)
}

func TestCatalog_CachesForSession(t *testing.T) {
	src := &fakeSource{
		roles:   []string{"Backend Engineer", "Designer"},
		phrases: map[string][]string{"Designer": {"Crafted delightful interfaces."}},
	}
	catalog, err := NewCatalog(src)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		roles, err := catalog.Roles(context.Background())
		require.NoError(t, err)
		assert.Equal(t, src.roles, roles)

		phrases, err := catalog.Phrases(context.Background(), "Designer")
		require.NoError(t, err)
		assert.Equal(t, []string{"Crafted delightful interfaces."}, phrases)
	}

	assert.Equal(t, int32(1), src.roleCalls.Load())
	assert.Equal(t, int32(1), src.phraseCalls.Load())
}

func TestCatalog_ConcurrentLookups(t *testing.T) {
	src := &fakeSource{phrases: map[string][]string{"Designer": {"a"}}}
	catalog, err := NewCatalog(src)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = catalog.Phrases(context.Background(), "Designer")
		}()
	}
	wg.Wait()

	phrases, err := catalog.Phrases(context.Background(), "Designer")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, phrases)
}

func TestCatalog_ErrorsAreNotCached(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	catalog, err := NewCatalog(src)
	require.NoError(t, err)

	_, err = catalog.Roles(context.Background())
	require.Error(t, err)

	src.err = nil
	src.roles = []string{"QA"}
	roles, err := catalog.Roles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"QA"}, roles)
}

func TestPanel_SelectRole(t *testing.T) {
	src := &fakeSource{phrases: map[string][]string{"QA": {"Wrote tests."}}}
	panel := newTestPanel(t, src)

	phrases, err := panel.SelectRole(context.Background(), "QA")
	require.NoError(t, err)
	assert.Equal(t, []string{"Wrote tests."}, phrases)
	assert.Equal(t, "QA", panel.Role())
	assert.Equal(t, phrases, panel.Phrases())
}

func TestPanel_ToggleTwiceRestoresObjective(t *testing.T) {
	tests := []struct {
		name      string
		objective string
	}{
		{"empty", ""},
		{"plain", "Experienced engineer."},
		{"markup", "<p>Experienced engineer.</p>"},
		{"trailing space", "Experienced engineer. "},
	}

	phrase := "Passionate about distributed systems."
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			panel := newTestPanel(t, &fakeSource{})

			added, selected := panel.Toggle(tt.objective, phrase)
			assert.True(t, selected)
			assert.Contains(t, added, phrase)
			assert.True(t, panel.IsSelected(phrase))

			removed, selected := panel.Toggle(added, phrase)
			assert.False(t, selected)
			assert.Equal(t, tt.objective, removed)
			assert.False(t, panel.IsSelected(phrase))
		})
	}
}

func TestPanel_ToggleAppendsWithSingleSpace(t *testing.T) {
	panel := newTestPanel(t, &fakeSource{})

	objective, _ := panel.Toggle("", "First.")
	assert.Equal(t, "First.", objective)

	objective, _ = panel.Toggle(objective, "Second.")
	assert.Equal(t, "First. Second.", objective)
	assert.Equal(t, []string{"First.", "Second."}, panel.Selected())

	objective, _ = panel.Toggle(objective, "First.")
	assert.Equal(t, "Second.", objective)
	assert.Equal(t, []string{"Second."}, panel.Selected())
}

func TestPanel_ToggleRemovesTypedText(t *testing.T) {
	// text typed by hand is still found by substring match
	panel := newTestPanel(t, &fakeSource{})

	objective, selected := panel.Toggle("I love Go. I ship.", "I love Go.")
	assert.False(t, selected)
	assert.Equal(t, "I ship.", objective)
}

func TestPanel_Reconcile(t *testing.T) {
	panel := newTestPanel(t, &fakeSource{})

	panel.Reconcile("<p>Team player.</p><p>  </p><ul><li>Ships fast.</li></ul><p>Team player.</p>")
	assert.Equal(t, []string{"Team player.", "Ships fast."}, panel.Selected())

	panel.Reconcile("no blocks here")
	assert.Empty(t, panel.Selected())

	panel.Reconcile("")
	assert.Empty(t, panel.Selected())
}

func TestParseSegments_NestedBlocks(t *testing.T) {
	segments := ParseSegments("<ul><li><p>Nested</p></li></ul><h2>Heading</h2>")
	assert.Equal(t, []string{"Nested", "Heading"}, segments)
}
