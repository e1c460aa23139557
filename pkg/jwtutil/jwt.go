package jwtutil

import (
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type JWTConfig struct {
	PubPath  string
	PrivPath string
	Issuer   string
	Audience string
}
