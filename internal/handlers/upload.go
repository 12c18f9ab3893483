package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

var errFileTooLarge = errors.New("file too large")

// UploadImage reads the multipart field "file" and returns it inline as a
// data: URL, to be stored directly in a collection or product document.
func UploadImage(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/upload"
		defer handlePanic(c, route)

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+1<<20)

		header, err := c.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondWithError(c, http.StatusBadRequest, route, tooLargeMessage(maxBytes))
				return
			}
			respondWithError(c, http.StatusBadRequest, route, "no file was uploaded")
			return
		}
		if header.Size > maxBytes {
			respondWithError(c, http.StatusBadRequest, route, tooLargeMessage(maxBytes))
			return
		}

		file, err := header.Open()
		if err != nil {
			respondInternal(c, route, "error processing the image", err)
			return
		}
		defer file.Close()

		raw, err := readLimited(file, maxBytes)
		if errors.Is(err, errFileTooLarge) {
			respondWithError(c, http.StatusBadRequest, route, tooLargeMessage(maxBytes))
			return
		}
		if err != nil {
			respondInternal(c, route, "error processing the image", err)
			return
		}

		detected := mimetype.Detect(raw)
		if !strings.HasPrefix(detected.String(), "image/") {
			respondWithError(c, http.StatusBadRequest, route, "the file is not an image")
			return
		}

		mime := strings.SplitN(detected.String(), ";", 2)[0]
		url := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(raw))
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"url": url}, "url": url})
	}
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxBytes {
		return nil, errFileTooLarge
	}
	return raw, nil
}

func tooLargeMessage(maxBytes int64) string {
	return fmt.Sprintf("the file exceeds the %d byte limit", maxBytes)
}
