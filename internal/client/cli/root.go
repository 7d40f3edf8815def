package cli

import (
	"context"
	"fmt"
	"sync"
)

func (a *App) getStatus() string {
	s := ""
	if a.isPrivileged() {
		s = "admin "
	}
	if m := a.Mode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s) ", s)
	}
	return s
}

// Root loads the gallery, starts the background workers and runs the REPL
// until the user exits. The workers are stopped before Root returns.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to artwall (type 'help' for commands)")

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	if err := a.Refresh(ctx, nil); err != nil {
		fmt.Fprintln(a.out, "Error:", describeError(err))
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()
	go func() {
		defer wg.Done()
		a.board.Run(ctx)
	}()

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Run executes Root and releases the client and local state afterwards.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.log.Error(ctx, "close failed", "error", err)
		}
	}()
	a.Root(ctx)
}
