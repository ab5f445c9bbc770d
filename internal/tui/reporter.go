package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"textcnn/internal/domain"
)

// Reporter forwards training events to a running Bubble Tea program.
// Safe to call from the training goroutine.
type Reporter struct {
	p *tea.Program
}

// NewReporter wraps a program started with the dashboard Model.
func NewReporter(p *tea.Program) *Reporter { return &Reporter{p: p} }

func (r *Reporter) RunStarted(info domain.RunInfo) { r.p.Send(runInfoMsg(info)) }

func (r *Reporter) BatchDone(bp domain.BatchProgress) { r.p.Send(batchMsg(bp)) }

func (r *Reporter) EpochDone(e domain.EpochResult) { r.p.Send(epochMsg(e)) }

func (r *Reporter) RunFinished(test domain.EvalResult) { r.p.Send(doneMsg(test)) }

// Fail reports a run that ended before completion.
func (r *Reporter) Fail(err error) { r.p.Send(failMsg{err: err}) }
