package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/buseagkoc/construction-chatbot/internal/pkg/errcode"
	appErr "github.com/buseagkoc/construction-chatbot/internal/pkg/errors"
	"github.com/buseagkoc/construction-chatbot/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	switch {
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrSectioning):
		response.Error(c, errcode.ErrInvalidFile, "failed to process document")
	case errors.Is(err, appErr.ErrStore):
		response.Error(c, errcode.ErrStoreFailed, "storage unavailable")
	case errors.Is(err, appErr.ErrCache):
		response.Error(c, errcode.ErrCacheFailed, "cache unavailable")
	case errors.Is(err, appErr.ErrGeneration):
		response.Error(c, errcode.ErrAIUnavailable, "answer generation unavailable")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
