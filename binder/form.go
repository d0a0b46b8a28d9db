package binder

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"

	"github.com/dmitrymomot/storefront/pkg/file"
)

var uploadSliceType = reflect.TypeOf([]file.Upload(nil))

// Multipart binds `form:"name"` fields and `file:"name"` fields of type
// []file.Upload from a multipart/form-data body. File bodies stay open until
// the request's multipart form is cleaned up by net/http.
func Multipart(maxMemory int64) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			return ErrBinderNotApplicable
		}
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}

		form := r.MultipartForm
		if err := bindTagged(v, "form", ErrInvalidForm, func(name string) ([]string, bool) {
			vals, ok := form.Value[name]
			return vals, ok && len(vals) > 0
		}); err != nil {
			return err
		}

		rv := reflect.ValueOf(v).Elem()
		rt := rv.Type()
		for i := range rv.NumField() {
			name := rt.Field(i).Tag.Get("file")
			if name == "" || name == "-" {
				continue
			}
			if rt.Field(i).Type != uploadSliceType {
				return fmt.Errorf("%w: field %s must be []file.Upload", ErrInvalidTarget, rt.Field(i).Name)
			}

			headers := form.File[name]
			uploads := make([]file.Upload, 0, len(headers))
			for _, fh := range headers {
				f, err := fh.Open()
				if err != nil {
					return errors.Join(ErrInvalidForm, err)
				}
				uploads = append(uploads, file.Upload{
					Filename:    file.SanitizeFilename(fh.Filename),
					ContentType: fh.Header.Get("Content-Type"),
					Size:        fh.Size,
					Body:        f,
				})
			}
			rv.Field(i).Set(reflect.ValueOf(uploads))
		}
		return nil
	}
}
