package answering

import (
	"context"
	"net/http"
)

// Health is the answering service's self-reported status.
type Health struct {
	Status        string
	ChatbotLoaded bool
	Timestamp     float64
}

// Healthy reports whether the service has its answering pipeline loaded.
func (h *Health) Healthy() bool {
	return h.Status == "healthy" && h.ChatbotLoaded
}

// Info describes the answering service API.
type Info struct {
	Name          string
	Version       string
	Endpoints     map[string]string
	ChatbotLoaded bool
}

// Health calls GET {baseURL}/health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	body, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	ret := &Health{}
	if err := decodeRequired(fields, "status", &ret.Status); err != nil {
		return nil, err
	}
	if err := decodeOptional(fields, "chatbot_loaded", &ret.ChatbotLoaded); err != nil {
		return nil, err
	}
	if err := decodeOptional(fields, "timestamp", &ret.Timestamp); err != nil {
		return nil, err
	}
	return ret, nil
}

// Info calls GET {baseURL}.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	body, err := c.do(ctx, http.MethodGet, "", nil)
	if err != nil {
		return nil, err
	}
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	ret := &Info{}
	if err := decodeRequired(fields, "name", &ret.Name); err != nil {
		return nil, err
	}
	if err := decodeOptional(fields, "version", &ret.Version); err != nil {
		return nil, err
	}
	if err := decodeOptional(fields, "endpoints", &ret.Endpoints); err != nil {
		return nil, err
	}
	if err := decodeOptional(fields, "chatbot_loaded", &ret.ChatbotLoaded); err != nil {
		return nil, err
	}
	return ret, nil
}
