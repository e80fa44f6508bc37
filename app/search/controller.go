package search

import (
	"net/http"
	"strconv"

	"plinth/core/dispatcher"
	"plinth/core/router"
	"plinth/core/types"
)

type SearchController struct {
	Dispatcher *dispatcher.Dispatcher
}

func NewSearchController(disp *dispatcher.Dispatcher) *SearchController {
	return &SearchController{Dispatcher: disp}
}

func (c *SearchController) Routes(router *router.RouterGroup) {
	router.GET("/search", c.Search)
}

func (c *SearchController) Search(ctx *router.Context) error {
	term := ctx.Query("q")
	if term == "" {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Missing search term"})
	}

	limit := 0
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	result, err := c.Dispatcher.Ask(ctx.Request.Context(), &Find{
		Term:       term,
		EntityType: ctx.Query("type"),
		Limit:      limit,
	})
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Search failed: " + err.Error()})
	}

	return ctx.JSON(http.StatusOK, result)
}
