package router

import (
	"io"
	"net/url"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes bounds in-memory reads of uploaded schema file fields.
const maxUploadBytes = 8 << 20

// RespondWithError writes the standardized error body for non-envelope
// failures and aborts the request.
func RespondWithError(c *gin.Context, status int, err *RequestError) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.GetErrorInfo()})
}

// RespondValidationErrors writes a 400 with the field-to-errors mapping
// verbatim as the body, exactly one entry per offending field.
func RespondValidationErrors(c *gin.Context, report map[string][]string) {
	c.AbortWithStatusJSON(400, report)
}

// FormInput extracts form fields and uploaded file contents from a
// form-encoded or multipart request body.
func FormInput(c *gin.Context) (url.Values, map[string][]byte, error) {
	if err := c.Request.ParseForm(); err != nil {
		return nil, nil, err
	}
	form := c.Request.PostForm
	files := make(map[string][]byte)
	if multipart, err := c.MultipartForm(); err == nil && multipart != nil {
		for name, values := range multipart.Value {
			form[name] = values
		}
		for name, headers := range multipart.File {
			if len(headers) == 0 {
				continue
			}
			f, err := headers[0].Open()
			if err != nil {
				return nil, nil, err
			}
			content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
			f.Close()
			if err != nil {
				return nil, nil, err
			}
			files[name] = content
		}
	}
	return form, files, nil
}
