package model

import "github.com/golang-jwt/jwt/v5"

// GuestClaims are the JWT claims carried by a guest token. The GuestID is
// the connection identity used by the game core.
type GuestClaims struct {
	GuestID  string `json:"guestId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GuestLoginResponse is returned by POST /v1/auth/guest.
type GuestLoginResponse struct {
	Token    string `json:"token"`
	GuestID  string `json:"guestId"`
	Username string `json:"username"`
}
