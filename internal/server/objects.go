package server

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ministry-site/internal/content"
	"ministry-site/internal/objstore"
)

// multipartOverhead is allowed on top of the file size for form boundaries
// and the other fields.
const multipartOverhead = 1 << 20

// DeleteObjectsRequest removes several uploads at once.
type DeleteObjectsRequest struct {
	Paths []string `json:"paths" binding:"required,min=1"`
}

// ServeObject handles GET /objects/*path. ?download=1 asks the browser to save
// the file instead of displaying it.
func (a *API) ServeObject(c *gin.Context) {
	f, obj, err := a.objects.Open(c.Request.Context(), strings.TrimPrefix(c.Param("path"), "/"))
	if err != nil {
		a.fail(c, err)
		return
	}
	defer f.Close()

	if c.Query("download") != "" {
		setAttachment(c, path.Base(obj.Path))
	}
	c.Header("Content-Type", obj.ContentType)
	c.Header("Cache-Control", "public, max-age=3600")
	http.ServeContent(c.Writer, c.Request, obj.Path, obj.CreatedAt, f)
}

// UploadObject handles POST /api/admin/uploads. The form carries "file" and
// an optional "folder".
func (a *API) UploadObject(c *gin.Context) {
	if a.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.maxUpload+multipartOverhead)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			a.fail(c, objstore.ErrTooLarge)
			return
		}
		badRequest(c, "missing file")
		return
	}

	folder := strings.Trim(c.DefaultPostForm("folder", "uploads"), "/")
	if folder == "" {
		folder = "uploads"
	}
	p, err := objstore.CleanPath(folder + "/" + objectName(fh.Filename))
	if err != nil {
		a.fail(c, err)
		return
	}

	src, err := fh.Open()
	if err != nil {
		a.fail(c, err)
		return
	}
	defer src.Close()

	obj, err := a.objects.Upload(c.Request.Context(), p, src)
	if err != nil {
		a.fail(c, err)
		return
	}
	a.log.Info("object uploaded", "path", obj.Path, "size", obj.Size, "content_type", obj.ContentType)
	c.JSON(http.StatusCreated, obj)
}

// ListObjects handles GET /api/admin/uploads?prefix=.
func (a *API) ListObjects(c *gin.Context) {
	objs, err := a.objects.List(c.Request.Context(), c.Query("prefix"))
	respondList(a, c, objs, err)
}

// DeleteObject handles DELETE /api/admin/uploads/*path.
func (a *API) DeleteObject(c *gin.Context) {
	p := strings.TrimPrefix(c.Param("path"), "/")
	a.respondDeleted(c, a.objects.Delete(c.Request.Context(), p))
}

// DeleteObjects handles POST /api/admin/uploads/delete.
func (a *API) DeleteObjects(c *gin.Context) {
	var req DeleteObjectsRequest
	if !bindJSON(c, &req) {
		return
	}
	a.respondDeleted(c, a.objects.Delete(c.Request.Context(), req.Paths...))
}

// objectName gives an upload a unique, URL-safe file name that keeps the
// original extension.
func objectName(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, " /\\") {
		ext = ""
	}
	base := content.Slugify(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	if base == "" {
		base = "file"
	}
	return uuid.NewString()[:8] + "-" + base + ext
}

func setAttachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}
