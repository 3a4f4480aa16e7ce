package outcome_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/servekit/core/outcome"
)

func TestClassificationString(t *testing.T) {
	t.Parallel()

	cases := map[outcome.Classification]string{
		outcome.Success:                      "Success",
		outcome.NoResponse:                   "NoResponse",
		outcome.DnsUnknownHost:               "DnsUnknownHost",
		outcome.ListeningHostNotReady:        "ListeningHostNotReady",
		outcome.ContentTooLarge:              "ContentTooLarge",
		outcome.ContentServedOnIllegalMethod: "ContentServedOnIllegalMethod",
		outcome.MalformedRequest:             "MalformedRequest",
		outcome.RequestTimeout:               "RequestTimeout",
		outcome.UncaughtExceptionThrown:      "UncaughtExceptionThrown",
		outcome.ConnectionClosed:             "ConnectionClosed",
		outcome.EventSourceClosed:            "EventSourceClosed",
		outcome.ExceptionThrown:              "ExceptionThrown",
	}
	for c, want := range cases {
		assert.Equal(t, want, c.String())
	}
	assert.Equal(t, "Unknown", outcome.Classification(99).String())
}

func TestMultiRecorderFansOut(t *testing.T) {
	t.Parallel()

	var order []string
	first := outcome.RecorderFunc(func(_ outcome.RequestInfo, _ *outcome.Outcome) {
		order = append(order, "first")
	})
	second := outcome.RecorderFunc(func(info outcome.RequestInfo, out *outcome.Outcome) {
		order = append(order, "second")
		assert.Equal(t, "GET", info.Method)
		assert.Equal(t, outcome.Success, out.Classification)
	})

	multi := outcome.MultiRecorder(first, second)
	multi.Record(
		outcome.RequestInfo{Method: "GET", Received: time.Now()},
		&outcome.Outcome{Classification: outcome.Success, StatusCode: 200},
	)

	assert.Equal(t, []string{"first", "second"}, order)
}
