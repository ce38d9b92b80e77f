package doses

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/julianstephens/droptime/internal/cli"
	"github.com/julianstephens/droptime/internal/constants"
	"github.com/julianstephens/droptime/internal/errors"
	"github.com/julianstephens/droptime/internal/timer"
	"github.com/julianstephens/droptime/internal/utils"
)

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	view, err := ctx.Tracker.TodayView()
	fmt.Print(renderToday(view, ctx.Tracker.Now().Location()))
	return err
}

type TakeCmd struct {
	Drop  string `arg:"" help:"Eye drop id or name."`
	Slot  string `arg:"" help:"Time slot (morning, noon, evening, bedtime)."`
	Timer bool   `help:"Start the countdown to the next drop afterwards."`
}

func (c *TakeCmd) Run(ctx *cli.Context) error {
	drop, slot, err := ctx.ResolveDose(c.Drop, c.Slot)
	if err != nil {
		return err
	}

	at, err := ctx.Tracker.MarkTaken(drop.ID, slot)
	if errors.IsNotFound(err) {
		return fmt.Errorf("%s is not scheduled for %s today", drop.Name, slot)
	}
	if err != nil {
		return err
	}

	view, err := ctx.Tracker.TodayView()
	fmt.Printf("✓ %s (%s) taken at %s\n", drop.Name, slot.Label(ctx.Tracker.Locale()), utils.CurrentTime(at))
	fmt.Printf("Progress: %s\n", progressLine(view.Progress))
	if err != nil {
		return err
	}

	if c.Timer {
		return runTimer(ctx, ctx.Config.TimerDuration(), constants.TimerTick)
	}
	return nil
}

type UndoCmd struct {
	Drop string `arg:"" help:"Eye drop id or name."`
	Slot string `arg:"" help:"Time slot (morning, noon, evening, bedtime)."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *UndoCmd) Run(ctx *cli.Context) error {
	drop, slot, err := ctx.ResolveDose(c.Drop, c.Slot)
	if err != nil {
		return err
	}

	if !c.Yes && !cli.Confirm(os.Stdin, os.Stdout, fmt.Sprintf("Mark %s (%s) as not taken?", drop.Name, slot)) {
		fmt.Println("Undo cancelled.")
		return nil
	}

	err = ctx.Tracker.Undo(drop.ID, slot)
	if errors.IsNotFound(err) {
		return fmt.Errorf("%s is not scheduled for %s today", drop.Name, slot)
	}
	if err != nil {
		return err
	}
	fmt.Printf("↺ %s (%s) marked as not taken\n", drop.Name, slot)
	return nil
}

type TimerCmd struct {
	Minutes int `help:"Countdown length in minutes. Defaults to timer_minutes from the config."`
}

func (c *TimerCmd) Run(ctx *cli.Context) error {
	d := ctx.Config.TimerDuration()
	if c.Minutes > 0 {
		d = time.Duration(c.Minutes) * time.Minute
	}
	return runTimer(ctx, d, constants.TimerTick)
}

// runTimer counts down in the terminal until expiry or Ctrl-C.
func runTimer(ctx *cli.Context, d, interval time.Duration) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	countdown := timer.NewCountdown(d)
	err := timer.Run(sigCtx, countdown, interval, func(remaining time.Duration) {
		fmt.Printf("\r⏱  Next drop in %s ", timer.Format(remaining))
	})
	fmt.Println()
	if stderrors.Is(err, context.Canceled) {
		fmt.Println("Timer cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println(constants.TimerDoneMessage)
	if ctx.Notifier != nil {
		ctx.Notifier.TimerDone(sigCtx)
	}
	return nil
}

type HistoryCmd struct {
	Days   int  `help:"Only show the most recent N days." default:"0"`
	Detail bool `help:"Show the per-drop grid for each day."`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	entries := ctx.Tracker.History()
	fmt.Print(renderHistory(entries, ctx.Tracker.Locale(), c.Days, c.Detail, ctx.Tracker.Now().Location()))
	return nil
}
