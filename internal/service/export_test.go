package service

import "time"

// SetClock replaces the clock of a StudyService built by NewStudyService.
func SetClock(s StudyService, now func() time.Time) {
	s.(*studyServiceImpl).now = now
}
