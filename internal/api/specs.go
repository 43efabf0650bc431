package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/byteplug/task-tracker/internal/api/endpoint"
)

// SpecsHandler exposes the endpoint registry as a machine-readable document,
// rendered straight from the same records the dispatcher runs on so the
// published contract can never drift from the enforced one.
type SpecsHandler struct {
	specs []endpointSpec
}

type endpointSpec struct {
	Name           string         `json:"name"`
	Collection     string         `json:"collection,omitempty"`
	Path           string         `json:"path"`
	Authentication bool           `json:"authentication"`
	OperateOnItem  bool           `json:"operate_on_item"`
	Errors         []string       `json:"errors,omitempty"`
	Request        map[string]any `json:"request,omitempty"`
	Response       map[string]any `json:"response,omitempty"`
}

func NewSpecsHandler(table []endpoint.Endpoint) *SpecsHandler {
	specs := make([]endpointSpec, 0, len(table))
	for _, ep := range table {
		spec := endpointSpec{
			Name:           ep.Name,
			Collection:     ep.Collection,
			Path:           ep.Path(),
			Authentication: ep.RequiresAuth,
			OperateOnItem:  ep.OperatesOnItem,
			Errors:         ep.Errors,
		}
		if ep.Request != nil {
			spec.Request = ep.Request.Describe()
		}
		if ep.Response != nil {
			spec.Response = ep.Response.Describe()
		}
		specs = append(specs, spec)
	}
	return &SpecsHandler{specs: specs}
}

// Specs handles GET /specs.
func (h *SpecsHandler) Specs(c echo.Context) error {
	return c.JSON(http.StatusOK, h.specs)
}
