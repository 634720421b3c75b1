package harness

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
)

// imdbRow matches a CLI table row that starts with an IMDb id.
var imdbRow = regexp.MustCompile(`^tt\d+\s`)

// Assertions checks popcorn output: CLI tables and rendered TUI screens.
type Assertions struct {
	t *testing.T
}

// NewAssertions creates an assertions helper.
func NewAssertions(t *testing.T) *Assertions {
	return &Assertions{t: t}
}

// OutputContains asserts the output contains all given strings.
func (a *Assertions) OutputContains(output string, expected ...string) {
	a.t.Helper()
	for _, exp := range expected {
		if !strings.Contains(output, exp) {
			a.t.Errorf("expected output to contain %q, got:\n%s", exp, clip(output))
		}
	}
}

// OutputNotContains asserts the output contains none of the given strings.
func (a *Assertions) OutputNotContains(output string, unexpected ...string) {
	a.t.Helper()
	for _, unexp := range unexpected {
		if strings.Contains(output, unexp) {
			a.t.Errorf("expected output not to contain %q, got:\n%s", unexp, clip(output))
		}
	}
}

// MovieRows asserts the output lists exactly the given IMDb ids, in order,
// one per row.
func (a *Assertions) MovieRows(output string, ids ...string) {
	a.t.Helper()
	var got []string
	for _, line := range strings.Split(output, "\n") {
		if imdbRow.MatchString(line) {
			got = append(got, strings.Fields(line)[0])
		}
	}
	if strings.Join(got, ",") != strings.Join(ids, ",") {
		a.t.Errorf("expected rows %v, got %v:\n%s", ids, got, clip(output))
	}
}

// Found asserts the search summary line reports n results.
func (a *Assertions) Found(output string, n int) {
	a.t.Helper()
	a.OutputContains(output, fmt.Sprintf("Found %d results", n))
}

// NoFailure asserts neither a CLI error nor a TUI error marker is shown.
func (a *Assertions) NoFailure(output string) {
	a.t.Helper()
	for _, ind := range []string{"Error:", "⛔", "panic:"} {
		if strings.Contains(output, ind) {
			a.t.Errorf("unexpected failure %q in output:\n%s", ind, clip(output))
			return
		}
	}
}

// HelpVisible asserts the screen shows the key help instead of the panes.
func (a *Assertions) HelpVisible(screen string) {
	a.t.Helper()
	a.OutputContains(screen, "Press ? or Esc to close this help", "rate (0 is 10)")
	a.OutputNotContains(screen, "Found ")
}

// PaneVisible asserts each pane title appears on the screen.
func (a *Assertions) PaneVisible(screen string, titles ...string) {
	a.t.Helper()
	for _, title := range titles {
		if !strings.Contains(screen, title) {
			a.t.Errorf("expected pane %q on screen:\n%s", title, clip(screen))
		}
	}
}

func clip(s string) string {
	const limit = 800
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "... (truncated)"
}
