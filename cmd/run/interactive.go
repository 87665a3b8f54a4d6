package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/browser-runtime/dom"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	attrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// treeNode is one element in the inspector.
type treeNode struct {
	el       *dom.Element
	depth    int
	children []*treeNode
	expanded bool
}

type inspectorModel struct {
	root    *treeNode
	visible []*treeNode
	vp      viewport.Model
	cursor  int
	ready   bool
}

// runInteractive opens the DOM inspector over the final document.
// It refuses to start without a terminal.
func runInteractive(doc *dom.Document) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}

	body := doc.Body()
	if body == nil {
		return fmt.Errorf("document has no body")
	}

	m := &inspectorModel{root: buildTree(body, 0)}
	m.root.expanded = true
	m.refresh()

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func buildTree(el *dom.Element, depth int) *treeNode {
	n := &treeNode{el: el, depth: depth}
	for _, c := range el.Children() {
		n.children = append(n.children, buildTree(c, depth+1))
	}
	return n
}

// refresh rebuilds the visible line list from expansion state.
func (m *inspectorModel) refresh() {
	m.visible = m.visible[:0]
	var walk func(n *treeNode)
	walk = func(n *treeNode) {
		m.visible = append(m.visible, n)
		if n.expanded {
			for _, c := range n.children {
				walk(c)
			}
		}
	}
	walk(m.root)
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
}

func (m *inspectorModel) Init() tea.Cmd { return nil }

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 2
		m.vp = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
		m.ready = true

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
		case "enter", " ":
			n := m.visible[m.cursor]
			if len(n.children) > 0 {
				n.expanded = !n.expanded
				m.refresh()
			}
		}
	}

	if m.ready {
		m.vp.SetContent(m.renderTree())
		m.scrollToCursor()
	}
	return m, nil
}

func (m *inspectorModel) scrollToCursor() {
	if m.cursor < m.vp.YOffset {
		m.vp.SetYOffset(m.cursor)
	} else if m.cursor >= m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(m.cursor - m.vp.Height + 1)
	}
}

func (m *inspectorModel) renderTree() string {
	var b strings.Builder
	for i, n := range m.visible {
		line := m.renderNode(n)
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *inspectorModel) renderNode(n *treeNode) string {
	indent := strings.Repeat("  ", n.depth)

	marker := "  "
	if len(n.children) > 0 {
		if n.expanded {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}

	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(marker)
	b.WriteString(tagStyle.Render("<" + n.el.Tag() + ">"))

	for _, a := range n.el.Attributes() {
		b.WriteString(attrStyle.Render(fmt.Sprintf(" %s=%q", a.Key, a.Val)))
	}

	if len(n.children) == 0 {
		if text := strings.TrimSpace(n.el.Text()); text != "" {
			if len(text) > 40 {
				text = text[:40] + "…"
			}
			b.WriteString(textStyle.Render(" " + text))
		}
	}
	return b.String()
}

func (m *inspectorModel) View() string {
	if !m.ready {
		return "loading..."
	}
	header := titleStyle.Render("document") + "\n\n"
	footer := "\n" + helpStyle.Render("↑/↓ move · enter expand/collapse · q quit")
	return header + m.vp.View() + footer
}
