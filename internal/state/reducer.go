package state

import "github.com/vzahanych/weather-display/internal/weather"

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is the whole display state. Report is the last good paired fetch and
// is replaced wholesale, never field by field; it survives a later failure so
// the previous conditions stay on screen next to the error.
type State struct {
	Status     Status          `json:"status"`
	Token      uint64          `json:"token"`
	Report     *weather.Report `json:"report,omitempty"`
	Err        string          `json:"error,omitempty"`
	UseCelsius bool            `json:"use_celsius"`
}

type Action interface {
	isAction()
}

type FetchStarted struct {
	Token uint64
}

type FetchSucceeded struct {
	Token  uint64
	Report *weather.Report
}

type FetchFailed struct {
	Token   uint64
	Message string
}

type UnitsToggled struct{}

func (FetchStarted) isAction()   {}
func (FetchSucceeded) isAction() {}
func (FetchFailed) isAction()    {}
func (UnitsToggled) isAction()   {}

// Reduce applies a to s. The boolean reports whether the action was accepted;
// a rejected action leaves the state untouched. A fetch result is accepted
// only while loading and only for the latest issued token.
func Reduce(s State, a Action) (State, bool) {
	switch a := a.(type) {
	case FetchStarted:
		if a.Token <= s.Token {
			return s, false
		}
		s.Status = StatusLoading
		s.Token = a.Token
		return s, true

	case FetchSucceeded:
		if s.Status != StatusLoading || a.Token != s.Token || a.Report == nil {
			return s, false
		}
		s.Status = StatusSuccess
		s.Report = a.Report
		s.Err = ""
		return s, true

	case FetchFailed:
		if s.Status != StatusLoading || a.Token != s.Token {
			return s, false
		}
		s.Status = StatusError
		s.Err = a.Message
		return s, true

	case UnitsToggled:
		s.UseCelsius = !s.UseCelsius
		return s, true
	}

	return s, false
}
