package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/top5/internal/models"
	"github.com/desertthunder/top5/internal/tasks"
)

// Prompt asks yes/no questions on a line-oriented terminal.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt reads answers from in and writes questions to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Ask writes question and reads one answer. Only "y" and "yes" (any case) confirm; end of input declines.
func (p *Prompt) Ask(question string) (bool, error) {
	if _, err := fmt.Fprintf(p.out, "%s %s ", styles.Warn(question), styles.Help("[y/N]")); err != nil {
		return false, err
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Confirmer returns a [tasks.Confirmer] asking before an existing playlist is overwritten.
func (p *Prompt) Confirmer() tasks.Confirmer {
	return tasks.ConfirmFunc(func(ctx context.Context, pl models.Playlist) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		return p.Ask(fmt.Sprintf("The playlist %q already exists (%d tracks). Proceeding will delete all its contents and replace them. Proceed?", pl.Name, pl.TrackCount))
	})
}
