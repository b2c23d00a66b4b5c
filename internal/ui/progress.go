package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/desertthunder/top5/internal/models"
	"github.com/desertthunder/top5/internal/tasks"
)

// ProgressPrinter writes one line per [tasks.ProgressUpdate] with a static progress bar.
type ProgressPrinter struct {
	w       io.Writer
	bar     progress.Model
	palette *Palette
}

// NewProgressPrinter creates a printer writing to w.
func NewProgressPrinter(w io.Writer) *ProgressPrinter {
	return &ProgressPrinter{
		w:       w,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(24), progress.WithoutPercentage()),
		palette: styles,
	}
}

// Render formats update as "phase bar message".
func (p *ProgressPrinter) Render(update tasks.ProgressUpdate) string {
	percent := 1.0
	if update.Total > 0 {
		percent = float64(update.Step) / float64(update.Total)
	}
	return fmt.Sprintf("%-16s %s %s", p.palette.Help(update.Phase.String()), p.bar.ViewAs(percent), update.Message)
}

// Print writes the rendered update followed by a newline.
func (p *ProgressPrinter) Print(update tasks.ProgressUpdate) error {
	_, err := fmt.Fprintln(p.w, p.Render(update))
	return err
}

// Follow prints updates until updates is closed. Each channel received on flush is closed once every
// update already buffered in updates has been printed.
func (p *ProgressPrinter) Follow(updates <-chan tasks.ProgressUpdate, flush <-chan chan struct{}) {
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			p.Print(update)
		case ack := <-flush:
			p.printBuffered(updates)
			close(ack)
		}
	}
}

func (p *ProgressPrinter) printBuffered(updates <-chan tasks.ProgressUpdate) {
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			p.Print(update)
		default:
			return
		}
	}
}

// FlushBefore wraps confirmer so pending progress output is printed before the question is asked.
// done is closed when the printer has stopped.
func FlushBefore(confirmer tasks.Confirmer, flush chan<- chan struct{}, done <-chan struct{}) tasks.Confirmer {
	return tasks.ConfirmFunc(func(ctx context.Context, pl models.Playlist) (bool, error) {
		ack := make(chan struct{})
		select {
		case flush <- ack:
			select {
			case <-ack:
			case <-done:
			}
		case <-done:
		}
		return confirmer.Confirm(ctx, pl)
	})
}
