package jwtutil

import (
	"log"
	"time"
)

// LoadAndBuild loads the verification key once at startup and builds a
// Verifier from it. Fatal on failure: the service cannot authenticate
// anything without the key.
func LoadAndBuild(cfg JWTConfig) *Verifier {
	pub, err := LoadRSAPublicKeyFromPEM(cfg.PubPath)
	if err != nil || pub == nil {
		log.Fatalf("failed to load public key from %s: %v", cfg.PubPath, err)
	}

	return NewVerifier(pub, cfg.Issuer, cfg.Audience)
}

// LoadAndBuildGenerator loads the signing key and builds a token Generator.
func LoadAndBuildGenerator(cfg JWTConfig, kid string, ttl time.Duration) *Generator {
	priv, err := LoadRSAPrivateKeyFromPEM(cfg.PrivPath)
	if err != nil || priv == nil {
		log.Fatalf("failed to load private key from %s: %v", cfg.PrivPath, err)
	}

	return NewGenerator(priv, cfg.Issuer, cfg.Audience, kid, ttl)
}
