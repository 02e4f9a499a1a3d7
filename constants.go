//go:build !release
// +build !release

package main

const (
	DEBUG                   = true
	SecretsPath             = "secrets-debug.json"
	SeedPath                = "seed.yaml"
	MaxDBconnectionPoolSize = 30
	APIListenAddr           = ":12000"
	FeedListenAddr          = ":8089"
	FeedBaseURL             = "http://localhost:8089"
)
