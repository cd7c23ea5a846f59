// Package store holds the application state shared by every front end.
//
// [AppState] keeps the catalog, the signed-in [models.User], the user's liked places and schedules, and
// the flags that drive overlays (login modal, side menu, alert dialog). It exposes three kinds of operation:
//
//   - Getters such as [AppState.LikedPlaces] are pure and return copies.
//   - Mutations such as [AppState.AddLiked] change one field, never fail, and never perform I/O.
//   - Actions such as [AppState.LoginWithPassword] call the [Identity] or [Documents] collaborator
//     and apply mutations only after the call succeeds.
//
// # Write-through
//
// [AppState.LikePlace], [AppState.UnlikePlace], and [AppState.AddScheduleEntry] mutate local state and then
// hand the full post-mutation {liked, schedules} snapshot to the [Writer]. They return without waiting for
// the remote write; [AppState.Flush] waits for pending writes.
//
// # Errors
//
// Collaborator failures are logged and returned as [AuthError] or [StoreError] with state untouched.
// User-scoped actions called while logged out return a [PreconditionError] before doing anything.
//
// # Observing Changes
//
// [AppState.Subscribe] registers a listener that receives a [Change] after every mutation.
package store
