package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"insurance-marketplace/internal/infrastructure/storage"
)

const imageField = "image"

var errNotAnImage = errors.New("image must be an image/* file")

// parseForm reads a multipart form limited to maxBytes. Plain
// url-encoded bodies are accepted as well.
func parseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return r.ParseMultipartForm(maxBytes)
	}
	return r.ParseForm()
}

// formImage returns the uploaded image, or nil when the request has none.
// The caller closes the returned file once the upload is done.
func formImage(r *http.Request) (*storage.Upload, io.Closer, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	contentType := imageContentType(header)
	if !strings.HasPrefix(contentType, "image/") {
		file.Close()
		return nil, nil, errNotAnImage
	}
	return &storage.Upload{Body: file, ContentType: contentType}, file, nil
}

func imageContentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func formBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.FormValue(key))
	return err == nil && v
}

func closeQuietly(c io.Closer) {
	if c != nil {
		c.Close()
	}
}
