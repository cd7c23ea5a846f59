package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tripmate/internal/formatter"
	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/shared"
	"github.com/urfave/cli/v3"
)

// SchedulesList prints the signed-in user's schedule entries.
func (r *Runner) SchedulesList(ctx context.Context, cmd *cli.Command) error {
	app, err := r.deps(ctx)
	if err != nil {
		return err
	}
	if !app.State.IsLoggedIn() {
		return fmt.Errorf("%w: run 'tripmate auth login' first", shared.ErrNotSignedIn)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	data, err := formatter.RenderSchedules(format, app.State.Schedules())
	if err != nil {
		return err
	}
	return r.emit(cmd, data)
}

// SchedulesAdd appends an entry built from --place, --title and --field.
func (r *Runner) SchedulesAdd(ctx context.Context, cmd *cli.Command) error {
	app, err := r.deps(ctx)
	if err != nil {
		return err
	}

	entry, err := r.scheduleEntry(app, cmd)
	if err != nil {
		return err
	}
	if err := app.State.AddScheduleEntry(ctx, entry); err != nil {
		return err
	}
	return r.writePlain("✓ Added %q to the schedule\n", entry.Title())
}

func (r *Runner) scheduleEntry(app *App, cmd *cli.Command) (models.ScheduleEntry, error) {
	entry := models.ScheduleEntry{}

	for _, field := range cmd.StringSlice("field") {
		key, value, ok := strings.Cut(field, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: field %q must be key=value", shared.ErrInvalidArgument, field)
		}
		entry[strings.TrimSpace(key)] = value
	}

	if raw := cmd.String("place"); raw != "" {
		id, err := r.placeID(app, raw)
		if err != nil {
			return nil, err
		}
		place, _ := app.Catalog.Place(id)
		entry["place_id"] = place.ID
		entry["title"] = place.Name
	}
	if title := strings.TrimSpace(cmd.String("title")); title != "" {
		entry["title"] = title
	}
	if entry.Title() == "" {
		return nil, fmt.Errorf("%w: --place or --title", shared.ErrMissingArgument)
	}

	entry["added_at"] = time.Now().UTC().Format(time.RFC3339)
	return entry, nil
}
