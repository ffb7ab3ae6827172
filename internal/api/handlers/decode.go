package handlers

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/dom/creek-dictionary/internal/domain"
)

const maxBodyBytes = 1 << 20

// formBinder is implemented by request bodies that can also arrive
// form-encoded.
type formBinder interface {
	bindForm(form url.Values)
}

// decodeBody fills dst from a JSON or application/x-www-form-urlencoded
// body. Anything that is not a form is treated as JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, dst formBinder) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		dst.bindForm(r.PostForm)
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return nil
}
