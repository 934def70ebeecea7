package tui

import (
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imageops/pullconsole/internal/api"
)

func typeInto(f *form, text string) {
	for _, r := range text {
		f.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestFormBackspaceRemovesWholeRune(t *testing.T) {
	f := newLoginForm()
	typeInto(&f, "josé")

	f.handleKey(tea.KeyMsg{Type: tea.KeyBackspace})

	got := f.get(fldUsername)
	if got != "jos" {
		t.Errorf("value = %q, want %q", got, "jos")
	}
	if !utf8.ValidString(f.fields[0].value) {
		t.Errorf("buffer %q is not valid UTF-8", f.fields[0].value)
	}

	// Deleting through the whole value never under-runs.
	for i := 0; i < 5; i++ {
		f.handleKey(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	if got := f.get(fldUsername); got != "" {
		t.Errorf("value after draining = %q, want empty", got)
	}
}

func TestSearchBackspaceRemovesWholeRune(t *testing.T) {
	m := newTestModel(t)
	m.activeTab = TabTasks
	seedTasks(&m, []api.Task{{TaskID: "t-1", Images: []string{"nginx:1.25"}}})

	newModel, _ := m.Update(keyRune('/'))
	m = newModel.(Model)
	for _, r := range "nginé" {
		newModel, _ = m.Update(keyRune(r))
		m = newModel.(Model)
	}

	newModel, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m = newModel.(Model)

	term := m.tasks.Filter().Search
	if term != "ngin" {
		t.Errorf("search term = %q, want %q", term, "ngin")
	}
	if !utf8.ValidString(term) {
		t.Errorf("search term %q is not valid UTF-8", term)
	}
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a long image reference", 10, "a long ..."},
		{"éééééééééé", 7, "éééé..."},
		{"日本語のイメージ名", 5, "日本..."},
		{"éé", 1, "é"},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) = %q is not valid UTF-8", tt.in, tt.n, got)
		}
	}
}
