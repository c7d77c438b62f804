package handler

import (
	"encoding/json"
	"net/http"

	"insurance-marketplace/pkg/response"
	"insurance-marketplace/pkg/validator"
)

// decodeJSON reads a JSON body into req and validates it. It writes the
// error response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return validate(w, v, req)
}

func validate(w http.ResponseWriter, v *validator.CustomValidator, req interface{}) bool {
	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}
