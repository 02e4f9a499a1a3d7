package main

import (
	"github.com/gbl08ma/firedispatch/board"
)

// FeedServer serves the Atom feeds of ongoing incidents
func FeedServer() {
	board.New(coordinator, FeedBaseURL).
		WithLogger(feedLog).
		Serve(FeedListenAddr)
}
