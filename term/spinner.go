package term

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// doneMsg carries the outcome of the background task.
type doneMsg struct {
	err error
}

// spinnerModel shows a spinner until its task finishes.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	done    bool
	err     error

	task     func() error
	start    sync.Once
	finished chan struct{}
	taskErr  error
}

func newSpinnerModel(styles Styles, label string, task func() error) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner
	return &spinnerModel{spinner: s, label: label, task: task, finished: make(chan struct{})}
}

// launch runs the task in the background once.
func (m *spinnerModel) launch() {
	m.start.Do(func() {
		go func() {
			defer close(m.finished)
			m.taskErr = m.task()
		}()
	})
}

func (m *spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.wait)
}

func (m *spinnerModel) wait() tea.Msg {
	m.launch()
	<-m.finished
	return doneMsg{err: m.taskErr}
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label + "\n"
}

// RunWithSpinner runs task while a spinner with label is drawn to out. It
// returns only after task has returned, even when ctx ends the spinner first.
func RunWithSpinner(ctx context.Context, out io.Writer, styles Styles, label string, task func() error) error {
	m := newSpinnerModel(styles, label, task)
	m.launch()
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithInput(nil),
	)
	_, runErr := p.Run()
	<-m.finished
	if runErr != nil {
		return runErr
	}
	return m.taskErr
}
