package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"textcnn/internal/domain"
)

// Messages delivered from the training goroutine via Program.Send.
type (
	runInfoMsg domain.RunInfo
	batchMsg   domain.BatchProgress
	epochMsg   domain.EpochResult
	doneMsg    domain.EvalResult
	failMsg    struct{ err error }
)

// Model is the Bubble Tea model for the training dashboard.
type Model struct {
	cancel   func()
	spinner  spinner.Model
	progress progress.Model
	info     domain.RunInfo
	batch    domain.BatchProgress
	epochs   []domain.EpochResult
	test     *domain.EvalResult
	err      error
	status   string
	ready    bool
	done     bool
}

// New creates a dashboard model. cancel stops the training run when the
// user quits before it finishes.
func New(cancel func()) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	pb := progress.New(progress.WithDefaultGradient())
	return Model{cancel: cancel, spinner: sp, progress: pb, status: "Waiting for first batch..."}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd { return m.spinner.Tick }

// Update handles key, window and training events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.progress.Width = min(60, max(10, msg.Width-34))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "ctrl+d":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
		return m, nil
	case runInfoMsg:
		m.info = domain.RunInfo(msg)
		m.status = fmt.Sprintf("Training on %d documents. Press q to stop.", m.info.TrainSize)
		return m, nil
	case batchMsg:
		m.batch = domain.BatchProgress(msg)
		return m, nil
	case epochMsg:
		m.epochs = append(m.epochs, domain.EpochResult(msg))
		return m, nil
	case doneMsg:
		res := domain.EvalResult(msg)
		m.test = &res
		m.done = true
		m.status = "Finished. Press q to quit."
		return m, nil
	case failMsg:
		m.err = msg.err
		m.done = true
		m.status = "Stopped. Press q to quit."
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the dashboard layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("20 Newsgroups CNN") + "\n")
	if m.info.Epochs > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf(
			"train %d  val %d  test %d  classes %d  batch size %d",
			m.info.TrainSize, m.info.ValSize, m.info.TestSize, m.info.Classes, m.info.BatchSize,
		)) + "\n")
	}
	b.WriteString(m.renderProgress() + "\n")
	b.WriteString(epochBoxStyle.Render(m.renderEpochs()) + "\n")
	b.WriteString(statusStyle.Render(m.status))
	return b.String()
}

func (m Model) renderProgress() string {
	if m.batch.Total == 0 {
		return m.spinner.View() + " starting up"
	}
	pct := float64(m.batch.Seen) / float64(m.batch.Total)
	line := fmt.Sprintf("epoch %d/%d %s batch %d/%d loss %.4f",
		m.batch.Epoch, m.info.Epochs, m.progress.ViewAs(pct),
		m.batch.Batch, m.batch.Batches, m.batch.Loss)
	if m.done {
		return "  " + line
	}
	return m.spinner.View() + " " + line
}

func (m Model) renderEpochs() string {
	if len(m.epochs) == 0 && m.test == nil && m.err == nil {
		return "No epochs finished yet."
	}
	var lines []string
	for _, e := range m.epochs {
		lines = append(lines, fmt.Sprintf("epoch %-3d val loss %.4f  accuracy %d/%d (%.0f%%)",
			e.Epoch, e.Val.Loss, e.Val.Correct, e.Val.Total, e.Val.Accuracy()))
	}
	if m.test != nil {
		lines = append(lines, finalStyle.Render(fmt.Sprintf("test      loss %.4f  accuracy %d/%d (%.0f%%)",
			m.test.Loss, m.test.Correct, m.test.Total, m.test.Accuracy())))
	}
	if m.err != nil {
		lines = append(lines, errStyle.Render("run ended: "+m.err.Error()))
	}
	return strings.Join(lines, "\n")
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	epochBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	finalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)
