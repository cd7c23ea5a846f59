// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// The [Model] is a thin view over [store.AppState]. Each route of [router.Router] has a view:
//  1. Home ("/"): the place catalog, with a marker on liked places
//  2. Liked ("/liked"): places in the liked set
//  3. Schedules ("/schedules"): the user's schedule entries
//  4. Locations ("/locations"): static coordinates
//
// Three overlays sit on top of the route views and are driven by AppState fields: the login modal
// (ModalVisible), the side menu (SideMenuVisible) and the alert dialog (Alert).
//
// Store actions run inside tea.Cmd functions and report back through the Msg union. Mutations made
// elsewhere reach the program through [Model.Attach], which subscribes to the store and the router.
//
// Keyboard navigation uses vim-style bindings with contextual help from charmbracelet/bubbles/help.
package ui
