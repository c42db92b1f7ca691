package handler

import (
	"encoding/json"
	"net/http"

	"stickynotes-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

// decodeBody parses the JSON request body into v and, when validate is
// non-nil, runs struct validation. On failure it writes a 400 and reports
// false.
func decodeBody(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}
	if validate != nil {
		if err := validate.Struct(v); err != nil {
			response.BadRequest(w, err.Error())
			return false
		}
	}
	return true
}
