package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/flight-tracks/backend/internal/domain"
)

// pathID binds the {id} path parameter. Returns false after writing a 422
// when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badRequest(w, "invalid format for parameter id: "+err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// queryParam binds an optional form-style query parameter into dest, which
// must be a pointer to a pointer. Returns false after writing a 422.
func queryParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		badRequest(w, "invalid format for parameter "+name+": "+err.Error())
		return false
	}
	return true
}

// pagination binds ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func pagination(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	var page, limit *int
	if !queryParam(w, r, "page", &page) || !queryParam(w, r, "limit", &limit) {
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(page, limit), true
}

func paginationOf(p domain.PaginationParams, total int64) Pagination {
	return Pagination{Page: p.Page, Limit: p.Limit, Total: int(total)}
}
