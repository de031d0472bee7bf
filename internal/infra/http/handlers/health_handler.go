package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

// ConnState is satisfied by *amqp091.Connection.
type ConnState interface {
	IsClosed() bool
}

type Configurable interface {
	Configured() bool
}

type HealthHandler struct {
	DB        Pinger
	RabbitMQ  ConnState
	Research  Configurable
	Version   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(db Pinger, rabbitMQ ConnState, research Configurable, version string) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		RabbitMQ:  rabbitMQ,
		Research:  research,
		Version:   version,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			deps["database"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	if h.RabbitMQ != nil {
		if h.RabbitMQ.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	if h.Research != nil && h.Research.Configured() {
		deps["ai_gateway"] = "configured"
	} else {
		deps["ai_gateway"] = "not configured"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "configured" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response)
}
