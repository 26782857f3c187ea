// Package handler provides the gin HTTP handlers.
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	errs "github.com/kart-io/bloggy/pkg/utils/errors"
)

// writeError renders an error as {"error": <message>} with the status carried
// by the Errno, or 500 for anything untyped. Internal causes are logged, not
// exposed.
func writeError(c *gin.Context, err error) {
	var errno *errs.Errno
	if !errors.As(err, &errno) {
		errno = errs.ErrInternal.WithCause(err)
	}

	if errno.HTTPStatus() >= 500 {
		logger.Errorw("request failed",
			"path", c.Request.URL.Path,
			"error", err.Error(),
		)
	}

	c.JSON(errno.HTTPStatus(), gin.H{"error": errno.Msg})
}
