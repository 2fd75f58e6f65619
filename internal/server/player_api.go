package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPlayer handles GET /api/player.
func (a *API) GetPlayer(c *gin.Context) {
	c.JSON(http.StatusOK, a.player.Render())
}

// PlayerCommand returns a handler for POST /api/player/<typ>. The body holds
// the command's fields; commands without arguments accept an empty body.
func (a *API) PlayerCommand(typ CommandType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd Command
		if err := c.ShouldBindJSON(&cmd); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "invalid request: "+err.Error())
			return
		}
		cmd.Type = typ

		model, err := a.handler.Handle(cmd)
		if err != nil {
			a.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, model)
	}
}

// Download handles GET /api/player/download. Uploaded audio is streamed as an
// attachment named after the track; anything else redirects to its source.
// ?describe=1 returns the save descriptor instead.
func (a *API) Download(c *gin.Context) {
	d, ok := a.player.Download()
	if !ok {
		c.JSON(http.StatusNotFound, Response{Status: "error", Message: "nothing is playing"})
		return
	}
	if c.Query("describe") != "" {
		c.JSON(http.StatusOK, d)
		return
	}

	loc, err := a.sources.Resolve(d.URL)
	if err != nil {
		a.fail(c, err)
		return
	}
	if !loc.Local() {
		c.Redirect(http.StatusFound, loc.URL)
		return
	}

	f, obj, err := a.objects.Open(c.Request.Context(), loc.ObjectPath)
	if err != nil {
		a.fail(c, err)
		return
	}
	defer f.Close()

	a.log.Info("track download", "path", obj.Path, "filename", d.Filename)
	setAttachment(c, d.Filename)
	c.Header("Content-Type", obj.ContentType)
	http.ServeContent(c.Writer, c.Request, d.Filename, obj.CreatedAt, f)
}
