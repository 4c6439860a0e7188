package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/launchdarkly/api-contract-tests/framework/harness"
	"github.com/launchdarkly/api-contract-tests/framework/ldtest"

	"github.com/google/uuid"
)

type jsonReport struct {
	RunID     string         `json:"runId"`
	StartedAt time.Time      `json:"startedAt"`
	ElapsedMS int64          `json:"elapsedMs"`
	OK        bool           `json:"ok"`
	Counts    map[string]int `json:"counts"`
	Scenarios []jsonOutcome  `json:"scenarios"`
}

type jsonOutcome struct {
	Name       string   `json:"name"`
	State      string   `json:"state"`
	Failures   []string `json:"failures,omitempty"`
	Error      string   `json:"error,omitempty"`
	ErrorKind  string   `json:"errorKind,omitempty"`
	SkipReason string   `json:"skipReason,omitempty"`
	StatusCode int      `json:"statusCode,omitempty"`
	ElapsedMS  int64    `json:"elapsedMs,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

func newJSONReport(results ldtest.Results, startedAt time.Time, elapsed time.Duration) jsonReport {
	r := jsonReport{
		RunID:     uuid.NewString(),
		StartedAt: startedAt.UTC(),
		ElapsedMS: elapsed.Milliseconds(),
		OK:        results.OK(),
		Counts:    make(map[string]int),
		Scenarios: make([]jsonOutcome, 0, len(results.Outcomes)),
	}
	for _, state := range []ldtest.State{ldtest.Passed, ldtest.Failed, ldtest.Errored, ldtest.Skipped} {
		r.Counts[state.String()] = results.Count(state)
	}
	for _, o := range results.Outcomes {
		jo := jsonOutcome{
			Name:       o.ScenarioName,
			State:      o.State.String(),
			Failures:   o.Failures,
			SkipReason: o.SkipReason,
			StatusCode: o.StatusCode,
			ElapsedMS:  o.Elapsed.Milliseconds(),
			Warnings:   o.Warnings,
		}
		if o.Err != nil {
			jo.Error = o.Err.Error()
			var te *harness.TransportError
			var be *harness.BuildError
			switch {
			case errors.As(o.Err, &te):
				jo.ErrorKind = te.Kind.String()
			case errors.As(o.Err, &be):
				jo.ErrorKind = "invalid request"
			}
		}
		r.Scenarios = append(r.Scenarios, jo)
	}
	return r
}

func writeJSONReport(path string, report jsonReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("could not write report to %s: %w", path, err)
	}
	return nil
}
