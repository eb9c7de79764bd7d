package cmd

import "github.com/pterm/pterm"

// progresser shows the number of mailboxes done. A nil progresser does nothing.
type progresser struct {
	pbar *pterm.ProgressbarPrinter
}

func newProgresser(total int) *progresser {
	if total == 0 {
		return nil
	}
	pbar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Synchronizing").
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		return nil
	}
	return &progresser{
		pbar: pbar,
	}
}

func (p *progresser) Increment(title string) {
	if p == nil || p.pbar == nil {
		return
	}
	p.pbar.UpdateTitle(title)
	p.pbar.Increment()
}

func (p *progresser) Stop() {
	if p == nil || p.pbar == nil {
		return
	}
	_, _ = p.pbar.Stop()
	p.pbar = nil
}
