package analytics

import "time"

// SetClock replaces the clock and ID source of an engine built by NewEngine.
func SetClock(e Engine, now func() time.Time, newID IDFunc) {
	impl := e.(*engineImpl)
	impl.now = now
	impl.newID = newID
}
