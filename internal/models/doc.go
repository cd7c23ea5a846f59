// Package models defines the domain entities shared by the application state, the identity provider and the document store.
//
// The package contains three categories of types:
//
// 1. Catalog entries, loaded once at start and never mutated
//   - [Place] : a place the user can browse and like
//   - [Location] : a coordinate entry for the map view
//
// 2. User-scoped data mirrored to the document store
//   - [UserRecord] : the persisted {liked, schedules} document at [UserDocumentPath]
//   - [ScheduleEntry] : an opaque schedule payload
//   - [Snapshot] : the result of reading a document that may not exist
//
// 3. Identity and UI directives
//   - [User] : the signed-in identity held by the application state
//   - [Credential] : what an identity provider returns after sign-in
//   - [AuthProvider] : an OAuth provider request with scopes
//   - [AlertData] : a modal dialog the UI should render
package models
