package story

import "errors"

var (
	errEmptyImage       = errors.New("empty image")
	errMalformedDataURI = errors.New("malformed data URI")
	errNotImage         = errors.New("data URI is not an image")
)
