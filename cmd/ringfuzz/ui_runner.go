package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"ringfuzz/internal/fuzzloop"
	"ringfuzz/internal/ui"
)

// runLoopWithUI runs the campaign next to a Bubble Tea program that renders
// its progress events. The program only reads events; it never drives the loop.
func runLoopWithUI(ctx context.Context, title, targetPath string, limit uint64, opts fuzzloop.Options) (fuzzloop.Result, error) {
	loopCtx, stop := context.WithCancel(ctx)
	defer stop()

	events := make(chan fuzzloop.Event, 256)
	opts.Sink = fuzzloop.ChannelSink{Ch: events}
	loop, err := fuzzloop.New(opts)
	if err != nil {
		return fuzzloop.Result{}, err
	}

	var (
		res     fuzzloop.Result
		loopErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		defer close(events)
		res, loopErr = loop.Run(loopCtx)
		return nil
	})
	g.Go(func() error {
		model := ui.NewProgressModel(title, targetPath, limit, events, stop)
		program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
		_, uiErr := program.Run()
		if uiErr != nil {
			stop()
		}
		// keep the loop from blocking on a full channel
		for range events {
		}
		return uiErr
	})
	uiErr := g.Wait()
	if loopErr != nil {
		return res, loopErr
	}
	if uiErr != nil && ctx.Err() == nil {
		return res, uiErr
	}
	return res, nil
}
