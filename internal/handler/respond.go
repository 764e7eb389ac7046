// Package handler maps HTTP routes onto the service layer.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"realestate-service/internal/apperror"
	"realestate-service/internal/repository"
)

// respondError renders err as JSON. Server errors are attached to the
// context so the access log can report them.
func respondError(c *gin.Context, err error) {
	status, body := apperror.Response(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperror.BadRequest("Invalid request body").With("error", err.Error()))
		return false
	}
	return true
}

func message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// pageQuery reads page, limit, search, sortBy and sortOrder.
func pageQuery(c *gin.Context) repository.IdentityQuery {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return repository.IdentityQuery{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
		SortBy: c.Query("sortBy"),
		Desc:   c.Query("sortOrder") == "desc",
	}.Normalize()
}
