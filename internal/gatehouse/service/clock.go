package service

import "time"

// Clock supplies the current time.  Production wiring passes nil to
// constructors, which defaults to UTCNow; tests inject a fixed clock so
// expiry and window checks are deterministic.
type Clock func() time.Time

func UTCNow() time.Time { return time.Now().UTC() }
