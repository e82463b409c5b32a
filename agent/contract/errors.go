package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrPlannerResponse = errors.New("planner response is not a json object")
	ErrValidation      = errors.New("validation failed")
	ErrCorpusLoad      = errors.New("rules corpus load failed")
	ErrToolInput       = errors.New("invalid tool input")
	ErrMemory          = errors.New("conversation memory failed")
)
