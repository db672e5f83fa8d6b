package api

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xraph/dialog/hub"
	"github.com/xraph/dialog/prompt"
)

// StartWorkflowRequest is the body of POST /v1/workflows.
type StartWorkflowRequest struct {
	// TypeID is a namespaced workflow type id, e.g. "user-service.create-user".
	TypeID string          `json:"type_id"`
	Input  json.RawMessage `json:"input,omitempty"`
}

// ContinueWorkflowRequest is the body of POST /v1/workflows/:id/continue.
type ContinueWorkflowRequest struct {
	Response prompt.Response `json:"response"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

func (a *API) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		Connections: len(a.eng.Hub().Connections()),
	})
}

// listWorkflowTypes returns the catalogue across connections
// (GET /v1/workflow-types[?namespace=a&namespace=b])
func (a *API) listWorkflowTypes(c echo.Context) error {
	namespaces := c.QueryParams()["namespace"]
	types, err := a.eng.Hub().ListWorkflowTypes(c.Request().Context(), namespaces...)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, types)
}

// startWorkflow starts a workflow and returns its first state
// (POST /v1/workflows)
func (a *API) startWorkflow(c echo.Context) error {
	var req StartWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if req.TypeID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "type_id is required")
	}

	st, err := a.eng.Hub().StartWorkflow(c.Request().Context(), req.TypeID, req.Input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, st)
}

// pickUpWorkflow returns the current state without advancing it
// (GET /v1/workflows/:id)
func (a *API) pickUpWorkflow(c echo.Context) error {
	st, err := a.eng.Hub().PickUpWorkflow(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// continueWorkflow answers the current prompt
// (POST /v1/workflows/:id/continue)
func (a *API) continueWorkflow(c echo.Context) error {
	var req ContinueWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}

	st, err := a.eng.Hub().ContinueWorkflow(c.Request().Context(), c.Param("id"), req.Response)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// listConnections returns the worker connections the hub holds
// (GET /v1/connections)
func (a *API) listConnections(c echo.Context) error {
	conns := a.eng.Hub().Connections()
	if conns == nil {
		conns = []hub.ConnectionInfo{}
	}
	return c.JSON(http.StatusOK, conns)
}
