package answering

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// decodeAnswer validates the response shape field by field. Anything other than
// {"answer": string, "processing_time": number} is reported as ServiceUnavailable.
// A "success": false flag, which the service sets when its pipeline is not loaded,
// is a failure too.
func decodeAnswer(body []byte) (*Answer, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	if raw, ok := fields["success"]; ok && !isNull(raw) {
		var success bool
		if err := json.Unmarshal(raw, &success); err != nil {
			return nil, unavailable(err, "field success is not a boolean")
		}
		if !success {
			return nil, unavailable(errors.New("service reported success=false"), "unsuccessful answer")
		}
	}

	var text string
	if err := decodeRequired(fields, "answer", &text); err != nil {
		return nil, err
	}

	var processingTime float64
	if err := decodeRequired(fields, "processing_time", &processingTime); err != nil {
		return nil, err
	}

	return &Answer{
		Text:                  text,
		ProcessingTimeSeconds: processingTime,
	}, nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, unavailable(errors.New("body is not a JSON object"), "malformed response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, unavailable(err, "malformed response")
	}
	return fields, nil
}

func decodeRequired(fields map[string]json.RawMessage, name string, v interface{}) error {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return unavailable(errors.Errorf("missing field %s", name), "malformed response")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return unavailable(err, "field %s has the wrong type", name)
	}
	return nil
}

func decodeOptional(fields map[string]json.RawMessage, name string, v interface{}) error {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return unavailable(err, "field %s has the wrong type", name)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
