package settings

import (
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/droptime/internal/cli"
	"github.com/julianstephens/droptime/internal/models"
)

type SettingsCmd struct {
	Show   SettingsShowCmd   `cmd:"" help:"Show slot times and eye drops." default:"1"`
	Time   SettingsTimeCmd   `cmd:"" help:"Change the time of a slot."`
	Drop   SettingsDropCmd   `cmd:"" help:"Edit an eye drop."`
	Add    SettingsAddCmd    `cmd:"" help:"Add an eye drop."`
	Remove SettingsRemoveCmd `cmd:"" help:"Remove an eye drop. Its history is kept."`
	Reset  SettingsResetCmd  `cmd:"" help:"Restore the default regimen."`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	fmt.Print(formatSettings(ctx.Tracker.Settings(), ctx.Tracker.Locale()))
	return nil
}

func formatSettings(s models.Settings, locale string) string {
	var b strings.Builder
	b.WriteString("Slot Times:\n")
	for _, slot := range models.AllSlots {
		fmt.Fprintf(&b, "  %-10s %s\n", slot.Label(locale)+":", s.SlotTime(slot))
	}

	b.WriteString("\nEye Drops:\n")
	if len(s.EyeDrops) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, d := range s.EyeDrops {
		slots := make([]string, len(d.Slots))
		for i, slot := range d.Slots {
			slots[i] = string(slot)
		}
		schedule := strings.Join(slots, ", ")
		if !d.Active() {
			schedule = "inactive"
		}
		fmt.Fprintf(&b, "  %-10s %-20s %s  %s\n", d.ID, d.Name, d.Color, schedule)
	}
	return b.String()
}

type SettingsTimeCmd struct {
	Slot string `arg:"" help:"Time slot (morning, noon, evening, bedtime)."`
	Time string `arg:"" help:"New time as HH:MM."`
}

func (c *SettingsTimeCmd) Run(ctx *cli.Context) error {
	slot, err := models.ParseTimeSlot(c.Slot)
	if err != nil {
		return err
	}
	draft := models.SettingsDraft{SlotTimes: map[models.TimeSlot]string{slot: c.Time}}
	if _, err := ctx.Tracker.SaveSettingsDraft(draft); err != nil {
		return err
	}
	fmt.Printf("✓ %s is now at %s\n", slot.Label(ctx.Tracker.Locale()), c.Time)
	return nil
}

type SettingsDropCmd struct {
	Drop  string  `arg:"" help:"Eye drop id or name."`
	Name  *string `help:"New name."`
	Color *string `help:"New color as #RRGGBB."`
	Slots *string `help:"Comma-separated slots the drop is taken in. Empty makes it inactive."`
}

func (c *SettingsDropCmd) Run(ctx *cli.Context) error {
	drop, err := ctx.Tracker.ResolveDrop(c.Drop)
	if err != nil {
		return err
	}

	edit := models.EyeDropEdit{Name: c.Name, Color: c.Color}
	if c.Slots != nil {
		slots, err := cli.ParseSlots(*c.Slots)
		if err != nil {
			return err
		}
		edit.Slots = map[models.TimeSlot]bool{}
		for _, slot := range models.AllSlots {
			edit.Slots[slot] = false
		}
		for _, slot := range slots {
			edit.Slots[slot] = true
		}
	}
	if edit.Name == nil && edit.Color == nil && edit.Slots == nil {
		fmt.Println("No changes specified. Use --name, --color or --slots.")
		return nil
	}

	draft := models.SettingsDraft{EyeDrops: map[string]models.EyeDropEdit{drop.ID: edit}}
	if _, err := ctx.Tracker.SaveSettingsDraft(draft); err != nil {
		return err
	}
	fmt.Printf("✓ Updated eye drop %s\n", drop.ID)
	return nil
}

type SettingsAddCmd struct {
	Name  string `arg:"" help:"Eye drop name."`
	Color string `help:"Display color as #RRGGBB."`
	Slots string `help:"Comma-separated slots." default:"morning,noon,evening,bedtime"`
}

func (c *SettingsAddCmd) Run(ctx *cli.Context) error {
	slots, err := cli.ParseSlots(c.Slots)
	if err != nil {
		return err
	}
	drop, err := ctx.Tracker.AddEyeDrop(c.Name, c.Color, slots)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Added eye drop %s (id %s)\n", drop.Name, drop.ID)
	return nil
}

type SettingsRemoveCmd struct {
	Drop string `arg:"" help:"Eye drop id or name."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *SettingsRemoveCmd) Run(ctx *cli.Context) error {
	drop, err := ctx.Tracker.ResolveDrop(c.Drop)
	if err != nil {
		return err
	}
	if !c.Yes && !cli.Confirm(os.Stdin, os.Stdout, fmt.Sprintf("Remove eye drop %s?", drop.Name)) {
		fmt.Println("Remove cancelled.")
		return nil
	}
	if err := ctx.Tracker.RemoveEyeDrop(drop.ID); err != nil {
		return err
	}
	fmt.Printf("✓ Removed eye drop %s. Past days still show its doses.\n", drop.Name)
	return nil
}

type SettingsResetCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

func (c *SettingsResetCmd) Run(ctx *cli.Context) error {
	if !c.Yes && !cli.Confirm(os.Stdin, os.Stdout, "Reset slot times and eye drops to the defaults?") {
		fmt.Println("Reset cancelled.")
		return nil
	}
	ctx.PerformAutomaticBackup()
	if _, err := ctx.Tracker.ResetSettings(); err != nil {
		return err
	}
	fmt.Println("✓ Settings restored to defaults")
	return nil
}
