package transport

import (
	"net/http"
	"path"

	"github.com/pkg/errors"

	"storefront/pkg/storefront/infrastructure/upload"
)

const (
	imageField = "image"
	// Room for multipart boundaries and headers on top of the image itself.
	multipartOverhead = 1 << 20
)

type uploadResponse struct {
	ImageURL string `json:"imageUrl"`
	Filename string `json:"filename"`
}

func (s *server) uploadProductImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxImageSize+multipartOverhead)
	if err := r.ParseMultipartForm(upload.MaxImageSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, upload.ErrTooLarge)
			return
		}
		writeError(w, invalidInput("expected a multipart form"))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(imageField)
	if err != nil {
		writeError(w, invalidInput("image file is required"))
		return
	}
	defer file.Close()

	url, err := s.images.SaveProductImage(file, header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{ImageURL: url, Filename: path.Base(url)})
}
