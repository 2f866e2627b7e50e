package planrepo

import "errors"

var (
	ErrNotFound      = errors.New("plan not found")
	ErrDayNotFound   = errors.New("plan day not found")
	ErrAlreadyExists = errors.New("plan already exists")
)
