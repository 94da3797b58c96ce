// Package common contains shared constants and sentinel errors used across
// fintrack components.
package common

// SessionCookieName is the cookie that carries the session token to browsers.
const SessionCookieName = "jwt"

// AuthorizationHeaderName carries "Bearer <token>" for non-browser clients.
const AuthorizationHeaderName = "Authorization"
