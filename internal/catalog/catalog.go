// package catalog loads the static place and location datasets and filters them.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/shared"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

//go:embed data/places.json
var bundledPlaces []byte

//go:embed data/locations.json
var bundledLocations []byte

// Catalog is the immutable dataset shown to every user.
type Catalog struct {
	Places    []models.Place
	Locations []models.Location
}

// Default returns the bundled catalog.
func Default() (*Catalog, error) {
	return Load("", "")
}

// Load reads the catalog, using the bundled dataset for any path left empty.
func Load(placesPath, locationsPath string) (*Catalog, error) {
	placesData, err := readOr(placesPath, bundledPlaces)
	if err != nil {
		return nil, err
	}
	locationsData, err := readOr(locationsPath, bundledLocations)
	if err != nil {
		return nil, err
	}

	c := &Catalog{}
	if err := json.Unmarshal(placesData, &c.Places); err != nil {
		return nil, fmt.Errorf("%w: failed to parse places: %v", shared.ErrInvalidConfig, err)
	}
	if err := json.Unmarshal(locationsData, &c.Locations); err != nil {
		return nil, fmt.Errorf("%w: failed to parse locations: %v", shared.ErrInvalidConfig, err)
	}

	seen := make(map[int]bool, len(c.Places))
	for _, p := range c.Places {
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate place id %d", shared.ErrInvalidConfig, p.ID)
		}
		seen[p.ID] = true
	}
	return c, nil
}

func readOr(path string, fallback []byte) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(shared.ExpandHome(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return data, nil
}

// Place looks up a place by id.
func (c *Catalog) Place(id int) (models.Place, bool) {
	for _, p := range c.Places {
		if p.ID == id {
			return p, true
		}
	}
	return models.Place{}, false
}

// Filter returns the places for which expression evaluates to true, in catalog order.
//
// Fields are referenced by their lowercase names, e.g. `rating >= 4.5 && category == "cafe"` or `"view" in tags`.
// An empty expression returns every place.
func Filter(places []models.Place, expression string) ([]models.Place, error) {
	if strings.TrimSpace(expression) == "" {
		return append([]models.Place(nil), places...), nil
	}

	program, err := expr.Compile(expression, expr.Env(models.Place{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid filter %q: %v", shared.ErrInvalidArgument, expression, err)
	}

	var matched []models.Place
	for _, p := range places {
		ok, err := run(program, p)
		if err != nil {
			return nil, fmt.Errorf("%w: filter failed on place %d: %v", shared.ErrInvalidArgument, p.ID, err)
		}
		if ok {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func run(program *vm.Program, p models.Place) (bool, error) {
	out, err := expr.Run(program, p)
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}
