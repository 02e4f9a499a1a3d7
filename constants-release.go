//go:build release
// +build release

package main

const (
	DEBUG                   = false
	SecretsPath             = "secrets.json"
	SeedPath                = "seed.yaml"
	MaxDBconnectionPoolSize = 50
	APIListenAddr           = ":12000"
	FeedListenAddr          = ":8089"
	FeedBaseURL             = "https://dispatch.example.org"
)
