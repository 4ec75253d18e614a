package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
)

// APIClient is the part of the gateway client the services use.
type APIClient interface {
	Call(ctx context.Context, path string, req apiclient.Request, out any) error
}

// envelopeKeys are the wrappers the backend uses around payloads.
var envelopeKeys = []string{
	"data", "items",
	"rewards", "reward",
	"questionnaires", "questionnaire", "questions",
	"assessments", "assessment",
	"complaints", "complaint",
	"bookings", "goals", "goal",
}

// decodeList accepts a bare JSON array or an object wrapping one.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, parseError("empty list response")
	}

	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, &apiclient.Error{Kind: apiclient.KindParse, Err: err}
		}
		return items, nil
	}

	inner, ok := unwrap(raw)
	if !ok || len(inner) == 0 || inner[0] != '[' {
		return nil, parseError("expected a list")
	}
	var items []T
	if err := json.Unmarshal(inner, &items); err != nil {
		return nil, &apiclient.Error{Kind: apiclient.KindParse, Err: err}
	}
	return items, nil
}

// decodeOne accepts a bare object or an object wrapping one.
func decodeOne[T any](raw json.RawMessage) (*T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, parseError("expected an object")
	}

	if inner, ok := unwrap(raw); ok && len(inner) > 0 && inner[0] == '{' {
		raw = inner
	}

	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, &apiclient.Error{Kind: apiclient.KindParse, Err: err}
	}
	return &item, nil
}

func unwrap(raw json.RawMessage) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	for _, key := range envelopeKeys {
		if inner, ok := obj[key]; ok {
			return bytes.TrimSpace(inner), true
		}
	}
	return nil, false
}

func parseError(msg string) error {
	return &apiclient.Error{Kind: apiclient.KindParse, Err: errors.New(msg)}
}

func bearer(token string) apiclient.Request {
	return apiclient.Request{Token: token}
}

// isNotFound reports a missing resource: a 404, or a client error whose
// message says the thing was not found.
func isNotFound(err error) bool {
	if errors.Is(err, apiclient.ErrNotFound) {
		return true
	}
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) || apiErr.Kind != apiclient.KindHTTP {
		return false
	}
	if apiErr.Status < http.StatusBadRequest || apiErr.Status >= http.StatusInternalServerError {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "not found")
}
