package server

import "errors"

// errNothingToRun is returned when neither the feed API nor any background
// job is configured.
var errNothingToRun = errors.New("nothing to run: feed api disabled and no background jobs")
