// Package rpc decodes the loosely typed arguments desk clients send to
// /api/method endpoints and keeps a registry of the exposed methods.
package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/timmiekettle/tk2/internal/platform/httpx"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// DecodeArgs merges query parameters, form values and a JSON body into dst.
// Later sources win: query < form < JSON body.
func DecodeArgs(r *http.Request, dst any) error {
	args := make(map[string]any)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			args[key] = values[len(values)-1]
		}
	}

	if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodHead {
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		switch mediaType {
		case "application/json":
			dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
			dec.UseNumber()
			body := make(map[string]any)
			if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: malformed json body: %v", httpx.ErrValidation, err)
			}
			for key, value := range body {
				args[key] = value
			}
		case "application/x-www-form-urlencoded", "multipart/form-data":
			if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
				return fmt.Errorf("%w: malformed form: %v", httpx.ErrValidation, err)
			}
			for key, values := range r.PostForm {
				if len(values) > 0 {
					args[key] = values[len(values)-1]
				}
			}
		}
	}

	// Desk clients always send these alongside method arguments.
	delete(args, "cmd")
	delete(args, "csrf_token")

	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("rpc: encode args: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: invalid arguments: %v", httpx.ErrValidation, err)
	}
	return nil
}

// Bind decodes the request arguments into dst and runs struct validation.
func Bind(r *http.Request, dst any) error {
	if err := DecodeArgs(r, dst); err != nil {
		return err
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			missing := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				missing = append(missing, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", httpx.ErrValidation, strings.Join(missing, ", "))
		}
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return nil
}
