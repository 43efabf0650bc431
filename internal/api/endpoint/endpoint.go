// Package endpoint implements the declarative endpoint-dispatch contract.
// Each operation is described by an Endpoint record (request/response
// schemas, declared domain errors, auth and item flags) compiled into
// an echo handler that performs token verification, document validation and
// error mapping uniformly, so business handlers only ever see well-shaped
// input.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/byteplug/task-tracker/internal/api/metrics"
	"github.com/byteplug/task-tracker/internal/core/domain"
	"github.com/byteplug/task-tracker/internal/schema"
)

// Call carries the assembled arguments for one handler invocation.
type Call struct {
	// UserKey is the authenticated user's resource key; empty on endpoints
	// that do not require auth.
	UserKey string
	// ItemID is the path-scoped item identifier; empty unless the endpoint
	// operates on an item.
	ItemID string
	// Document is the validated request document: map[string]any for a map
	// schema, the bare decoded value otherwise, nil when the endpoint
	// declares no request schema.
	Document any
}

// HandlerFunc is a business handler. It returns the response document (nil
// for empty-success endpoints) and may raise any of its declared domain
// errors; every other error is a server fault.
type HandlerFunc func(ctx context.Context, call Call) (any, error)

// Endpoint is the declarative configuration record for one operation.
type Endpoint struct {
	// Name is the operation name, e.g. "login" or "tasks.create".
	Name string
	// Collection is the top-level collection the endpoint belongs to
	// ("users", "tasks"), empty for root endpoints.
	Collection string
	// Request is the schema the inbound document must satisfy; nil means no
	// body is expected.
	Request schema.Node
	// Response is the schema the handler's return value must satisfy before
	// serialization; nil means an empty success response.
	Response schema.Node
	// Errors lists the domain-error identifiers the handler may raise.
	Errors []string
	// RequiresAuth demands a verifiable bearer token.
	RequiresAuth bool
	// OperatesOnItem adds an :item path segment whose value is passed to
	// the handler.
	OperatesOnItem bool
	// Handle is the business handler invoked after validation.
	Handle HandlerFunc
}

// Path returns the route path for the endpoint. All operations are POST,
// addressed by name under their collection.
func (ep Endpoint) Path() string {
	switch {
	case ep.Collection == "":
		return "/" + ep.Name
	case ep.OperatesOnItem:
		return "/" + ep.Collection + "/:item/" + ep.operation()
	default:
		return "/" + ep.Collection + "/" + ep.operation()
	}
}

// operation strips the collection prefix from the endpoint name, so
// "tasks.create" routes as /tasks/create.
func (ep Endpoint) operation() string {
	return strings.TrimPrefix(ep.Name, ep.Collection+".")
}

func (ep Endpoint) declares(code string) bool {
	for _, c := range ep.Errors {
		if c == code {
			return true
		}
	}
	return false
}

// Verifier is the token-decoding capability the dispatcher consumes.
type Verifier interface {
	Verify(token string) (userKey string, err error)
}

// Resolver confirms a verified user key still references a live user.
type Resolver interface {
	Resolve(ctx context.Context, userKey string) error
}

// Dispatcher compiles Endpoint records into echo handlers.
type Dispatcher struct {
	tokens   Verifier
	resolver Resolver
	logger   zerolog.Logger
}

func NewDispatcher(tokens Verifier, resolver Resolver, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{tokens: tokens, resolver: resolver, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the echo handler for ep. Dispatch order: token
// verification, stale-identity resolution, document decoding and
// validation, handler invocation, declared-error mapping, response-schema
// enforcement.
func (d *Dispatcher) Handler(ep Endpoint) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		call := Call{}

		if ep.RequiresAuth {
			userKey, err := d.authenticate(c)
			if err != nil {
				metrics.DispatchesTotal.WithLabelValues(ep.Name, "auth_error").Inc()
				return err
			}
			// The sweep may have deleted the user after the token was
			// issued; surface that as a distinguished domain error instead
			// of letting the first store read fail opaquely.
			if err := d.resolver.Resolve(ctx, userKey); err != nil {
				if errors.Is(err, domain.ErrStaleIdentity) {
					metrics.DispatchesTotal.WithLabelValues(ep.Name, "domain_error").Inc()
					return c.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrStaleIdentity.Code})
				}
				return fmt.Errorf("resolve identity: %w", err)
			}
			call.UserKey = userKey
		}

		if ep.OperatesOnItem {
			call.ItemID = c.Param("item")
		}

		if ep.Request != nil {
			doc, err := decodeDocument(c, ep.Request)
			if err != nil {
				metrics.DispatchesTotal.WithLabelValues(ep.Name, "validation_error").Inc()
				return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			}
			call.Document = doc
		}

		result, err := ep.Handle(ctx, call)
		if err != nil {
			var de *domain.Error
			if errors.As(err, &de) && ep.declares(de.Code) {
				metrics.DispatchesTotal.WithLabelValues(ep.Name, "domain_error").Inc()
				return c.JSON(http.StatusBadRequest, errorResponse{Error: de.Code})
			}
			// Undeclared errors are defects; bubble to the central error
			// handler which logs and answers 500.
			metrics.DispatchesTotal.WithLabelValues(ep.Name, "fault").Inc()
			return fmt.Errorf("endpoint %s: %w", ep.Name, err)
		}

		if ep.Response == nil {
			metrics.DispatchesTotal.WithLabelValues(ep.Name, "ok").Inc()
			return c.NoContent(http.StatusNoContent)
		}

		// A response failing its own schema is a contract violation by the
		// handler, never by the caller.
		if err := schema.Validate(ep.Response, result); err != nil {
			metrics.DispatchesTotal.WithLabelValues(ep.Name, "fault").Inc()
			return fmt.Errorf("endpoint %s: response violates schema: %w", ep.Name, err)
		}

		metrics.DispatchesTotal.WithLabelValues(ep.Name, "ok").Inc()
		return c.JSON(http.StatusOK, result)
	}
}

// authenticate extracts and verifies the bearer token.
func (d *Dispatcher) authenticate(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}

	userKey, err := d.tokens.Verify(parts[1])
	if err != nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	return userKey, nil
}

// decodeDocument decodes the request body and validates it against node.
// For map schemas, fields explicitly sent as null are stripped first: a null
// optional field means "not provided", and a null required field is then
// reported as missing.
func decodeDocument(c echo.Context, node schema.Node) (any, error) {
	var raw any
	if err := c.Bind(&raw); err != nil {
		return nil, &schema.Error{Reason: "malformed document"}
	}

	if doc, ok := raw.(map[string]any); ok {
		for name, value := range doc {
			if value == nil {
				delete(doc, name)
			}
		}
	}

	if err := schema.Validate(node, raw); err != nil {
		return nil, err
	}
	return raw, nil
}
