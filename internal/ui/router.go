package ui

import (
	"fmt"
	"strconv"
	"strings"
)

// Screen identifies one of the four screens.
type Screen int

const (
	ScreenList Screen = iota
	ScreenForm
	ScreenSettings
	ScreenNotFound
)

func (s Screen) String() string {
	switch s {
	case ScreenList:
		return "list"
	case ScreenForm:
		return "form"
	case ScreenSettings:
		return "settings"
	case ScreenNotFound:
		return "not-found"
	}
	return "unknown"
}

// Route is a resolved navigation target. TaskID is set only for an edit
// route; a form route with TaskID zero is the create form.
type Route struct {
	Screen Screen
	TaskID int
	Path   string
}

// ParseRoute maps a path to a screen. The table is static:
//
//	/              task list
//	/task/new      create form
//	/task/edit/:id edit form, :id a positive integer
//	/settings      settings
//	anything else  not-found
func ParseRoute(path string) Route {
	trimmed := strings.TrimSuffix(path, "/")
	switch trimmed {
	case "", "/":
		return Route{Screen: ScreenList, Path: "/"}
	case "/task/new":
		return Route{Screen: ScreenForm, Path: "/task/new"}
	case "/settings":
		return Route{Screen: ScreenSettings, Path: "/settings"}
	}
	if rest, ok := strings.CutPrefix(trimmed, "/task/edit/"); ok {
		id, err := strconv.Atoi(rest)
		if err == nil && id > 0 {
			return Route{Screen: ScreenForm, TaskID: id, Path: trimmed}
		}
	}
	return Route{Screen: ScreenNotFound, Path: path}
}

// EditPath builds the edit route for a task id.
func EditPath(id int) string {
	return fmt.Sprintf("/task/edit/%d", id)
}
