package service

import "fmt"

// StepError - отказ конкретного шага цепочки. Уже выполненные шаги
// возвращаются вызывающему рядом с этой ошибкой.
type StepError struct {
	Step     int
	FilterID string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("chain step %d (filter %s): %v", e.Step, e.FilterID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
