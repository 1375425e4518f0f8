package services

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Prompt markers used to route fake gateway replies.
const (
	textQuestionPrompt    = "interview question for difficulty level"
	answerEvalPrompt      = "Evaluate this interview answer"
	sessionFeedbackPrompt = "Generate comprehensive interview feedback"
	liveQuestionPrompt    = "You are an expert interviewer"
	liveAnswerPrompt      = "You are evaluating an interview answer"
	finalReportPrompt     = "final evaluation report"
)

type gatewayRoute struct {
	marker string
	fn     func(prompt string) (string, error)
}

// fakeGateway answers prompts by substring. Later routes take precedence.
type fakeGateway struct {
	mu     sync.Mutex
	routes []gatewayRoute
	calls  []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{}
}

func (f *fakeGateway) on(marker string, fn func(prompt string) (string, error)) *fakeGateway {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, gatewayRoute{marker: marker, fn: fn})
	return f
}

func (f *fakeGateway) reply(marker, text string) *fakeGateway {
	return f.on(marker, func(string) (string, error) { return text, nil })
}

func (f *fakeGateway) fail(marker string, err error) *fakeGateway {
	return f.on(marker, func(string) (string, error) { return "", err })
}

func (f *fakeGateway) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	var fn func(string) (string, error)
	for i := len(f.routes) - 1; i >= 0; i-- {
		if strings.Contains(prompt, f.routes[i].marker) {
			fn = f.routes[i].fn
			break
		}
	}
	f.mu.Unlock()

	if fn == nil {
		return "", errors.New("fake gateway: unexpected prompt")
	}
	return fn(prompt)
}

// count returns how many prompts contained marker.
func (f *fakeGateway) count(marker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.calls {
		if strings.Contains(p, marker) {
			n++
		}
	}
	return n
}

func (f *fakeGateway) prompts(marker string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.calls {
		if strings.Contains(p, marker) {
			out = append(out, p)
		}
	}
	return out
}

func strPtr(s string) *string { return &s }
