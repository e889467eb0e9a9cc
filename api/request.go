package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/services"
)

const (
	defaultMaxUploadBytes = 16 << 20
	maxJSONBytes          = 1 << 20
	imageFormField        = "image"
)

// form fields that hold checkbox values
var formBoolFields = map[string]bool{
	"is_published": true,
	"is_featured":  true,
}

// decodeInput reads a JSON body, or a multipart form with an optional image part, into dst.
// The returned upload is nil when no image was sent.
func decodeInput(w http.ResponseWriter, r *http.Request, dst any, maxUpload int64) (*services.Upload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return decodeMultipart(w, r, dst, maxUpload)
	}
	return nil, decodeJSON(w, r, dst)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		case errors.Is(err, io.EOF):
			return errs.NewMalformedPayloadError("empty", err)
		default:
			return errs.NewInvalidJSONError(err)
		}
	}
	return nil
}

func decodeMultipart(w http.ResponseWriter, r *http.Request, dst any, maxUpload int64) (*services.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errs.NewMaxBodySizeExceededError(maxErr.Limit)
		}
		return nil, errs.NewMalformedPayloadError("multipart", err)
	}

	fields := make(map[string]any, len(r.MultipartForm.Value))
	for key, values := range r.MultipartForm.Value {
		if len(values) == 0 {
			continue
		}
		if formBoolFields[key] {
			fields[key] = formBool(values[len(values)-1])
			continue
		}
		fields[key] = values[0]
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, errs.NewMalformedPayloadError("multipart", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, errs.NewMalformedPayloadError("multipart", err)
	}

	return formImage(r)
}

// formImage reads the image part of a parsed multipart form, if any.
func formImage(r *http.Request) (*services.Upload, error) {
	file, header, err := r.FormFile(imageFormField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewMalformedPayloadError("multipart", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errs.NewMalformedPayloadError("multipart", err)
	}
	if len(data) == 0 || header.Filename == "" {
		return nil, nil
	}
	return &services.Upload{Data: data, Filename: header.Filename}, nil
}

// formBool accepts HTML checkbox values as well as strconv booleans.
func formBool(v string) bool {
	if v == "on" || v == "yes" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
