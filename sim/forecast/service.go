package forecast

import (
	"bytes"
	"fmt"
	"sync/atomic"
	"text/template"
)

// Messages holds the templates rendered into forecast responses.
// Each template receives {{.Hour}}.
type Messages struct {
	Peak      string `yaml:"peak"`
	Recommend string `yaml:"recommend"`
}

// DefaultMessages returns the stock English messages.
func DefaultMessages() Messages {
	return Messages{
		Peak:      "{{.Hour}}:00 is expected to be very crowded",
		Recommend: "Laundry is recommended from {{.Hour}}:00",
	}
}

// Response is the serving payload for one date.
type Response struct {
	Date             string         `json:"date"`
	PeakMessage      string         `json:"peak_message"`
	RecommendMessage string         `json:"recommend_message"`
	Timeline         []HourForecast `json:"timeline"`
}

type loadState struct {
	predictor *Predictor
	err       error
}

// Service gates forecasting on a model load phase.
// Until Install or Fail is called every Forecast returns ErrModelNotReady;
// requests never wait for the load.
type Service struct {
	state     atomic.Pointer[loadState]
	peak      *template.Template
	recommend *template.Template
}

// NewService parses the message templates.
func NewService(msgs Messages) (*Service, error) {
	peak, err := template.New("peak").Parse(msgs.Peak)
	if err != nil {
		return nil, fmt.Errorf("parsing peak message: %w", err)
	}
	recommend, err := template.New("recommend").Parse(msgs.Recommend)
	if err != nil {
		return nil, fmt.Errorf("parsing recommend message: %w", err)
	}
	return &Service{peak: peak, recommend: recommend}, nil
}

// Install ends the load phase successfully.
func (s *Service) Install(p *Predictor) {
	if p == nil {
		panic("Service.Install: predictor must not be nil")
	}
	s.state.Store(&loadState{predictor: p})
}

// Fail ends the load phase with err; forecasting stays unavailable.
func (s *Service) Fail(err error) {
	s.state.Store(&loadState{err: err})
}

// Status returns nil when ready, otherwise an error wrapping ErrModelNotReady.
func (s *Service) Status() error {
	return s.state.Load().status()
}

func (st *loadState) status() error {
	switch {
	case st == nil:
		return fmt.Errorf("%w: model is loading", ErrModelNotReady)
	case st.err != nil:
		return fmt.Errorf("%w: model load failed: %v", ErrModelNotReady, st.err)
	case st.predictor == nil:
		return fmt.Errorf("%w: model load failed", ErrModelNotReady)
	}
	return nil
}

// Forecast serves one YYYY-MM-DD date.
func (s *Service) Forecast(date string) (*Response, error) {
	// One snapshot per request; Install and Fail may race with it.
	st := s.state.Load()
	if err := st.status(); err != nil {
		return nil, err
	}
	t, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	df, err := st.predictor.PredictDay(t)
	if err != nil {
		return nil, err
	}
	peak, err := render(s.peak, df.PeakHour)
	if err != nil {
		return nil, err
	}
	recommend, err := render(s.recommend, df.RecommendHour)
	if err != nil {
		return nil, err
	}
	return &Response{
		Date:             date,
		PeakMessage:      peak,
		RecommendMessage: recommend,
		Timeline:         df.Timeline,
	}, nil
}

func render(t *template.Template, hour int) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, struct{ Hour int }{hour}); err != nil {
		return "", fmt.Errorf("rendering %s message: %w", t.Name(), err)
	}
	return buf.String(), nil
}
