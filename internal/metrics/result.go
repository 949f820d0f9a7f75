package metrics

import (
	"encoding/json"
	"fmt"

	lsmerrors "github.com/Florex0Real/linux-system-manager/internal/errors"
)

// Result is either a reading or the reason it could not be taken.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok wraps a successful reading.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Unavailable records why a subsystem could not be read. The cause is kept
// for errors.Is and the result matches errors.ErrUnavailable.
func Unavailable[T any](subsystem string, cause error) Result[T] {
	return Result[T]{Err: lsmerrors.Wrap(cause, lsmerrors.ErrCodeUnavailable, subsystem+" unavailable")}
}

func (r Result[T]) Available() bool { return r.Err == nil }

// Reason is the human-readable cause, empty when the reading is available.
func (r Result[T]) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Get returns the value and whether it is usable.
func (r Result[T]) Get() (T, bool) {
	return r.Value, r.Err == nil
}

type resultJSON[T any] struct {
	Value *T     `json:"value,omitempty" yaml:"value,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r Result[T]) wire() resultJSON[T] {
	if r.Err != nil {
		return resultJSON[T]{Error: r.Err.Error()}
	}
	v := r.Value
	return resultJSON[T]{Value: &v}
}

// MarshalJSON emits {"value": ...} or {"error": "..."}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

// MarshalYAML mirrors the JSON shape.
func (r Result[T]) MarshalYAML() (interface{}, error) {
	return r.wire(), nil
}

// UnmarshalJSON accepts the shape produced by MarshalJSON.
func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var w resultJSON[T]
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Error != "" {
		r.Err = lsmerrors.New(lsmerrors.ErrCodeUnavailable, w.Error, "")
		return nil
	}
	if w.Value == nil {
		return fmt.Errorf("result has neither value nor error")
	}
	r.Value = *w.Value
	r.Err = nil
	return nil
}
