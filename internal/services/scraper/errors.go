package scraper

import "errors"

var (
	ErrRateLimited  = errors.New("rate limited")
	ErrPageNotFound = errors.New("page not found")
	ErrInvalidURL   = errors.New("invalid URL")
	ErrEmptyPage    = errors.New("empty page")
)
