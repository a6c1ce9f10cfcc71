package engine

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oddsline/settlement-api/internal/types"
	"github.com/oddsline/settlement-api/pkg/response"
)

// GinHandlers contains HTTP handlers for the settlement endpoints.
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{service: service}
}

// RunResponse is the settlement endpoint's response body.
type RunResponse struct {
	RunID       string                             `json:"run_id"`
	Message     string                             `json:"message"`
	Events      map[string]*types.SettlementRecord `json:"events"`
	UserPayouts []types.UserPayout                 `json:"user_payouts,omitempty"`
}

// SettleBatchHandler handles POST requests that submit an event batch
// for settlement. The body is the batch keyed by internal event ID.
func (h *GinHandlers) SettleBatchHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var batch types.Batch
		if err := c.ShouldBindJSON(&batch); err != nil {
			response.BadRequest(c, "Invalid batch payload")
			return
		}
		if len(batch) == 0 {
			response.BadRequest(c, "Batch contains no events")
			return
		}

		result, run, err := h.service.RunSettlement(c.Request.Context(), batch)
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.Success(c, RunResponse{
			RunID:       run.RunID,
			Message:     "Settlement completed successfully",
			Events:      result.Records,
			UserPayouts: result.UserPayouts,
		})
	}
}

// PropsHandler resolves the full soccer proposition bundle for one
// provider event.
func (h *GinHandlers) PropsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		providerEventID := c.Param("provider_event_id")

		bundle, err := h.service.ResolveProps(c.Request.Context(), providerEventID)
		response.Handle(c, bundle, err)
	}
}

// GetRunHandler returns one recorded settlement run with its per-event
// dispositions and full result payload.
func (h *GinHandlers) GetRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		runID := c.Param("run_id")

		run, err := h.service.GetDB().GetRun(runID)
		if err != nil {
			response.Handle(c, nil, err)
			return
		}
		events, err := h.service.GetDB().GetRunEvents(runID)
		if err != nil {
			response.Handle(c, nil, err)
			return
		}

		response.Success(c, gin.H{
			"run":    run,
			"events": events,
			"result": json.RawMessage(run.Result),
		})
	}
}

// ListRunsHandler returns recent settlement runs, newest first.
func (h *GinHandlers) ListRunsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		runs, err := h.service.GetDB().ListRuns(limit)
		response.Handle(c, runs, err)
	}
}
