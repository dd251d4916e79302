package model

import "fmt"

// ModelConstructionError reports an internal invariant violated while compiling
// constraints. It is a defect of the model or its inputs, surfaced immediately
// and never retried.
type ModelConstructionError struct {
	Msg string
}

func (e *ModelConstructionError) Error() string {
	return e.Msg
}

func modelErrorf(format string, args ...any) *ModelConstructionError {
	return &ModelConstructionError{Msg: fmt.Sprintf(format, args...)}
}
