package util

import "errors"

var (
	ErrEmailRegistered      = errors.New("email is already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrCourseNotFound       = errors.New("course not found")
	ErrCourseForbidden      = errors.New("course does not belong to this student")
	ErrStudentNotFound      = errors.New("student not found")
	ErrWeekNotFound         = errors.New("course week not found")
	ErrWeightsNotConfigured = errors.New("course weights are not configured")
	ErrInvalidWeights       = errors.New("invalid course weights")
	ErrInvalidOverride      = errors.New("invalid what-if override")
)
