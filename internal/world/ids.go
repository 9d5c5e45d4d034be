package world

import "sync/atomic"

var (
	dogIDCounter     atomic.Int64
	sessionIDCounter atomic.Int64
)

// NextDogID returns a process-wide unique dog id. Ids are monotonic and
// never reused while the process lives.
func NextDogID() int64 {
	return dogIDCounter.Add(1) - 1
}

// NextSessionID returns a process-wide unique session id.
func NextSessionID() int64 {
	return sessionIDCounter.Add(1) - 1
}
