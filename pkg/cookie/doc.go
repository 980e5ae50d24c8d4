// Package cookie sets and reads HMAC-signed HTTP cookies.
//
// A signed cookie carries base64(value).base64(hmac-sha256(value)), so the
// browser can read it but cannot alter it without [ErrBadSig]:
//
//	m := cookie.New(
//		cookie.WithSecret(secret), // 32+ bytes
//		cookie.WithSecure(true),
//	)
//	err := m.SetSigned(w, "oauth_state_github", state, 600)
//	state, err := m.GetSigned(r, "oauth_state_github")
//
// Cookies are HttpOnly and SameSite=Lax on path "/" unless configured
// otherwise. [Manager.At] derives a manager for a narrower path.
//
// Signing needs a secret; without one SetSigned and GetSigned return
// [ErrNoSecret]. Secrets shorter than 32 bytes are ignored.
package cookie
