package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tripmate/internal/models"
)

var (
	_ list.Item = placeItem{}
	_ list.Item = locationItem{}
	_ list.Item = scheduleItem{}
	_ list.Item = routeItem{}
)

// placeItem wraps [models.Place] to implement [list.Item].
type placeItem struct {
	place models.Place
	liked bool
}

func (i placeItem) FilterValue() string { return i.place.Name }
func (i placeItem) Title() string {
	if i.liked {
		return styles.like.Render("♥") + " " + i.place.Name
	}
	return i.place.Name
}
func (i placeItem) Description() string {
	parts := []string{}
	if i.place.Category != "" {
		parts = append(parts, i.place.Category)
	}
	if i.place.Rating > 0 {
		parts = append(parts, fmt.Sprintf("★ %.1f", i.place.Rating))
	}
	if i.place.Address != "" {
		parts = append(parts, i.place.Address)
	}
	return strings.Join(parts, " • ")
}

// locationItem wraps [models.Location] to implement [list.Item].
type locationItem struct {
	location models.Location
}

func (i locationItem) FilterValue() string { return i.location.Name }
func (i locationItem) Title() string       { return i.location.Name }
func (i locationItem) Description() string {
	return fmt.Sprintf("%.5f, %.5f", i.location.Lat, i.location.Lng)
}

// scheduleItem wraps [models.ScheduleEntry] to implement [list.Item].
type scheduleItem struct {
	index int
	entry models.ScheduleEntry
}

func (i scheduleItem) FilterValue() string { return i.Title() }
func (i scheduleItem) Title() string {
	if title := i.entry.Title(); title != "" {
		return title
	}
	return fmt.Sprintf("Entry %d", i.index+1)
}
func (i scheduleItem) Description() string {
	if at, ok := i.entry["added_at"]; ok {
		return fmt.Sprintf("added %v", at)
	}
	return ""
}

// routeItem is a side menu entry.
type routeItem struct {
	path  string
	title string
}

func (i routeItem) FilterValue() string { return i.title }
func (i routeItem) Title() string       { return i.title }
func (i routeItem) Description() string { return i.path }
