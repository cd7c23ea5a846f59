package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/tripmate/internal/catalog"
	"github.com/desertthunder/tripmate/internal/formatter"
	"github.com/desertthunder/tripmate/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlacesList prints the catalog, optionally narrowed by --filter.
func (r *Runner) PlacesList(ctx context.Context, cmd *cli.Command) error {
	app, err := r.deps(ctx)
	if err != nil {
		return err
	}

	places := app.State.Places()
	if expression := cmd.String("filter"); expression != "" {
		if places, err = catalog.Filter(places, expression); err != nil {
			return err
		}
		r.logger.Debug("filtered places", "expression", expression, "matches", len(places))
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	data, err := formatter.RenderPlaces(format, places, app.State.Liked())
	if err != nil {
		return err
	}
	return r.emit(cmd, data)
}

// PlacesLiked prints the signed-in user's liked places in catalog order.
func (r *Runner) PlacesLiked(ctx context.Context, cmd *cli.Command) error {
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
	data, err := formatter.RenderPlaces(format, app.State.LikedPlaces(), app.State.Liked())
	if err != nil {
		return err
	}
	return r.emit(cmd, data)
}

// PlacesLike adds a place to the liked list.
func (r *Runner) PlacesLike(ctx context.Context, cmd *cli.Command) error {
	app, err := r.deps(ctx)
	if err != nil {
		return err
	}
	id, err := r.placeID(app, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if err := app.State.LikePlace(ctx, id); err != nil {
		return err
	}
	place, _ := app.Catalog.Place(id)
	return r.writePlain("♥ Liked %s\n", place.Name)
}

// PlacesUnlike removes every occurrence of a place from the liked list.
func (r *Runner) PlacesUnlike(ctx context.Context, cmd *cli.Command) error {
	app, err := r.deps(ctx)
	if err != nil {
		return err
	}
	id, err := r.placeID(app, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	if err := app.State.UnlikePlace(ctx, id); err != nil {
		return err
	}
	place, _ := app.Catalog.Place(id)
	return r.writePlain("Removed %s from liked places\n", place.Name)
}

// PlacesLocations prints the static coordinates.
func (r *Runner) PlacesLocations(ctx context.Context, cmd *cli.Command) error {
	app, err := r.deps(ctx)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	data, err := formatter.RenderLocations(format, app.State.Locations())
	if err != nil {
		return err
	}
	return r.emit(cmd, data)
}

// placeID parses a catalog ID and checks that it exists.
func (r *Runner) placeID(app *App, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: place id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: place id %q is not a number", shared.ErrInvalidArgument, raw)
	}
	if _, ok := app.Catalog.Place(id); !ok {
		return 0, fmt.Errorf("%w: no place with id %d", shared.ErrInvalidArgument, id)
	}
	return id, nil
}

// emit writes rendered output to --output, or to the runner's output.
func (r *Runner) emit(cmd *cli.Command, data []byte) error {
	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteFile(path, data); err != nil {
			return err
		}
		r.logger.Info("output written", "path", path, "bytes", len(data))
		return nil
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
