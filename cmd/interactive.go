package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Beastly713/steganoweb/pkg/pipeline"
	"github.com/Beastly713/steganoweb/pkg/service"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Styles
var (
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	cursorStyle  = focusedStyle
	checkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")) // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	docStyle     = lipgloss.NewStyle().Margin(1, 2)
)

const helpText = "Navigate: ↑/↓ | Enter: Open Dir | Space: Select | 'd': Decode | 'g': Gather | 'e': Encode | 'q': Quit"

type fileItem struct {
	path     string
	name     string
	isDir    bool
	selected bool
}

type model struct {
	ctx       context.Context
	svc       *service.Service
	path      string
	files     []fileItem
	cursor    int
	status    string
	failed    bool
	textInput textinput.Model // message to hide in the image under the cursor
	editing   bool
	quitting  bool
}

func initialModel(ctx context.Context, s *service.Service, dir string) model {
	ti := textinput.New()
	ti.Placeholder = "Message to hide"
	ti.CharLimit = s.Limits().MaxMessageChars
	ti.Width = 60

	m := model{
		ctx:       ctx,
		svc:       s,
		path:      dir,
		status:    helpText,
		textInput: ti,
	}
	m.loadFiles()
	return m
}

func (m *model) loadFiles() {
	entries, err := os.ReadDir(m.path)
	if err != nil {
		m.setStatus(fmt.Sprintf("Error reading directory: %v", err), true)
		return
	}

	m.files = []fileItem{}
	// Parent directory
	m.files = append(m.files, fileItem{name: "..", isDir: true, path: filepath.Dir(m.path)})

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || imageExts[strings.ToLower(filepath.Ext(name))] {
			m.files = append(m.files, fileItem{
				name:  name,
				isDir: e.IsDir(),
				path:  filepath.Join(m.path, name),
			})
		}
	}
	m.cursor = 0
}

func (m *model) setStatus(s string, failed bool) {
	m.status = s
	m.failed = failed
}

func (m model) selectedPaths() []string {
	var paths []string
	for _, f := range m.files {
		if f.selected {
			paths = append(paths, f.path)
		}
	}
	return paths
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.files)-1 {
				m.cursor++
			}

		case "enter":
			if len(m.files) == 0 {
				break
			}
			if selected := m.files[m.cursor]; selected.isDir {
				m.path = selected.path
				m.loadFiles()
			}

		case " ":
			if len(m.files) > 0 && !m.files[m.cursor].isDir {
				m.files[m.cursor].selected = !m.files[m.cursor].selected
			}

		case "d":
			return m, m.decodeSelected()

		case "g":
			return m, m.gatherSelected()

		case "e":
			if len(m.files) == 0 {
				m.setStatus("Nothing to encode here", true)
				break
			}
			if m.files[m.cursor].isDir {
				m.setStatus("Move the cursor to an image to encode", true)
				break
			}
			m.editing = true
			m.textInput.Reset()
			return m, m.textInput.Focus()
		}

	case statusMsg:
		m.setStatus(msg.text, msg.failed)
		if !msg.failed {
			// Clear selections on success
			for i := range m.files {
				m.files[i].selected = false
			}
		}
		if msg.reload {
			cursor := m.cursor
			m.loadFiles()
			if cursor < len(m.files) {
				m.cursor = cursor
			}
		}
	}

	return m, nil
}

func (m model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.textInput.Blur()
		m.setStatus(helpText, false)
		return m, nil

	case tea.KeyEnter:
		m.editing = false
		m.textInput.Blur()
		if m.cursor >= len(m.files) {
			m.setStatus("Nothing to encode here", true)
			return m, nil
		}
		return m, m.encodeCurrent(m.files[m.cursor].path, m.textInput.Value())
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

type statusMsg struct {
	text   string
	failed bool
	reload bool
}

func (m model) decodeSelected() tea.Cmd {
	paths := m.selectedPaths()
	return func() tea.Msg {
		if len(paths) == 0 {
			return statusMsg{text: "No files selected!", failed: true}
		}

		var lines []string
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), failed: true}
			}
			decoded, err := m.svc.Decode(m.ctx, data, service.DecodeOptions{})
			if err != nil {
				lines = append(lines, fmt.Sprintf("%s: %v", filepath.Base(path), err))
				continue
			}
			lines = append(lines, fmt.Sprintf("%s [%s]: %s", filepath.Base(path), decoded.Format, decoded.Text))
		}
		return statusMsg{text: strings.Join(lines, "\n")}
	}
}

func (m model) gatherSelected() tea.Cmd {
	paths := m.selectedPaths()
	return func() tea.Msg {
		if len(paths) == 0 {
			return statusMsg{text: "No files selected!", failed: true}
		}

		groups := gatherShards(paths, m.svc.Limits())
		if len(groups) == 0 {
			return statusMsg{text: "Selection contains no shards", failed: true}
		}
		if len(groups) > 1 {
			return statusMsg{text: fmt.Sprintf("Selection mixes %d scattered messages", len(groups)), failed: true}
		}

		g := groups[0]
		if !g.Ready() {
			return statusMsg{text: fmt.Sprintf("Not enough shards. Need %d, selected %d", g.Header.Threshold, len(g.Shards)), failed: true}
		}
		msg, err := pipeline.Join(g)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), failed: true}
		}
		return statusMsg{text: "Success! Recovered message:\n" + string(msg)}
	}
}

func (m model) encodeCurrent(path, message string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), failed: true}
		}
		result, err := m.svc.Encode(m.ctx, data, message, service.EncodeOptions{})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), failed: true}
		}
		outPath := defaultEncodedPath(path)
		if err := os.WriteFile(outPath, result.PNG, 0644); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), failed: true}
		}
		return statusMsg{text: "Success! Message hidden in " + filepath.Base(outPath), reload: true}
	}
}

func (m model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	var s strings.Builder
	fmt.Fprintf(&s, "Directory: %s\n\n", m.path)

	for i, file := range m.files {
		cursor := " " // no cursor
		if m.cursor == i {
			s.WriteString(cursorStyle.Render(">"))
		} else {
			s.WriteString(cursor)
		}

		checked := " "
		if file.selected {
			checked = "x"
		}

		line := ""
		if file.isDir {
			line = fmt.Sprintf("[DIR] %s", file.name)
		} else {
			line = fmt.Sprintf("[%s] %s", checked, file.name)
		}

		if file.selected {
			line = checkedStyle.Render(line)
		}

		s.WriteString(" " + line + "\n")
	}

	if m.editing && m.cursor < len(m.files) {
		fmt.Fprintf(&s, "\nHide in %s (Enter to encode, Esc to cancel)\n%s\n", m.files[m.cursor].name, m.textInput.View())
	}

	status := m.status
	if m.failed {
		status = errorStyle.Render(status)
	}
	fmt.Fprintf(&s, "\n%s\n", status)
	return docStyle.Render(s.String())
}

// Cobra command setup
var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Interactive terminal UI for decoding, encoding and gathering",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		p := tea.NewProgram(initialModel(cmd.Context(), svc, cwd), tea.WithContext(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
