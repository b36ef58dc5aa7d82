package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tenishevR/tic-tac-toe-web/internal/api/response"
	"github.com/tenishevR/tic-tac-toe-web/internal/api/service"
)

// RecordController serves the game history.
type RecordController struct {
	recordService service.RecordService
}

// NewRecordController creates a new RecordController.
func NewRecordController(recordService service.RecordService) *RecordController {
	return &RecordController{recordService: recordService}
}

// List returns every record, most recent first.
func (rc *RecordController) List(c *gin.Context) {
	records, err := rc.recordService.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponseList(c, records)
}

// Get returns one record.
func (rc *RecordController) Get(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	rec, err := rc.recordService.Fetch(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponse(c, rec)
}

// Replay returns the board after each move of one record.
func (rc *RecordController) Replay(c *gin.Context) {
	id, ok := recordID(c)
	if !ok {
		return
	}

	frames, err := rc.recordService.Replay(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessResponseList(c, frames)
}

func recordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ErrorResponse(c, http.StatusBadRequest, "invalid record id")
		return 0, false
	}
	return id, true
}
