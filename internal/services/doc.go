// Package services implements the identity provider used by the application state.
//
// # Local Identity
//
// [LocalIdentity] keeps accounts in SQLite through the account repository and satisfies the store's
// identity interface:
//
//   - [LocalIdentity.CreateUser] registers an email/password account (Argon2id hash) and signs it in
//   - [LocalIdentity.SignInWithPassword] verifies the stored hash
//   - [LocalIdentity.SignInWithPopup] runs a [PopupFlow] and links the provider subject to an account
//   - [LocalIdentity.DeleteCurrentUser] soft-deletes the signed-in account and ends the session
//   - [LocalIdentity.CurrentUser] reports the persisted session, if still valid
//
// # Sessions
//
// [SessionStore] persists the signed-in user between runs as an HMAC-signed JWT in a file readable
// only by the owner. Expired or tampered tokens are rejected on load.
//
// # OAuth Popup
//
// [OAuthPopup] implements [PopupFlow] with the authorization code flow: it starts a temporary callback
// server, opens the browser at the consent page, waits up to two minutes for the redirect, exchanges
// the code, and reads the provider's userinfo endpoint.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrInvalidCredentials] : unknown email or wrong password
//   - [shared.ErrAccountExists] : registration with an email already in use
//   - [shared.ErrNoSession] : no one is signed in
//   - [shared.ErrSessionExpired] : the session token outlived its TTL
//   - [shared.ErrTimeout] : the OAuth redirect never arrived
package services
