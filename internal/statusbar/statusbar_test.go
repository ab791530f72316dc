package statusbar

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/buffer"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/theme"
)

func newBar() (*StatusBar, *time.Time) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sb := New(ConfigFromTheme(theme.Dark, 2*time.Second))
	sb.now = func() time.Time { return now }
	return sb, &now
}

func TestTextDefault(t *testing.T) {
	sb, _ := newBar()
	sb.SetFileInfo("main.go *", "go", true)
	sb.SetCursor(buffer.Position{Line: 9, Col: 4})
	sb.SetEntryPoints(1)

	left, right, style := sb.Text()
	if left != "main.go *" {
		t.Errorf("left = %q", left)
	}
	if right != "▶ 1  go  Ln 10, Col 5" {
		t.Errorf("right = %q", right)
	}
	if style != theme.Dark.Style(theme.StyleStatusModified) {
		t.Error("modified file not drawn with the modified style")
	}
}

func TestMessageExpires(t *testing.T) {
	sb, now := newBar()
	sb.SetMessage("Saved %s", "main.go")
	if left, _, _ := sb.Text(); left != "Saved main.go" {
		t.Errorf("left = %q", left)
	}
	*now = now.Add(3 * time.Second)
	if left, _, _ := sb.Text(); left != "[No Name]" {
		t.Errorf("expired message still shown: %q", left)
	}
}

func TestPromptWins(t *testing.T) {
	sb, _ := newBar()
	sb.SetMessage("hello")
	sb.SetPrompt("Find: ", "greet")
	left, right, style := sb.Text()
	if left != "Find: greet" || right != "" || style != theme.Dark.Style(theme.StyleStatusPrompt) {
		t.Errorf("prompt text %q %q", left, right)
	}
	sb.SetPrompt("", "")
	if left, _, _ := sb.Text(); left != "hello" {
		t.Errorf("after prompt: %q", left)
	}
}

func TestDraw(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(40, 3)

	sb, _ := newBar()
	sb.SetFileInfo("app.py", "python", false)
	sb.Draw(screen, 40, 3)
	screen.Show()

	cells, w, _ := screen.GetContents()
	var row strings.Builder
	for x := 0; x < w; x++ {
		c := cells[2*w+x]
		if len(c.Runes) > 0 {
			row.WriteRune(c.Runes[0])
		}
	}
	line := row.String()
	if !strings.HasPrefix(line, "app.py") || !strings.Contains(line, "python  Ln 1, Col 1") {
		t.Errorf("status row = %q", line)
	}
}
