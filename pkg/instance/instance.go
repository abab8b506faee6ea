// Package instance identifies which process replica emitted a log line.
package instance

import "os"

// GetID returns the replica identifier. Heroku-style deployments set DYNO;
// container deployments set WORKER_ID; a single local process gets the
// default.
func GetID() string {
	if dyno := os.Getenv("DYNO"); dyno != "" {
		return dyno
	}
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	return "worker-0"
}
