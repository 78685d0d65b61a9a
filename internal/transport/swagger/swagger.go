package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// DocPath is where the router serves the raw console OpenAPI document.
const DocPath = "/openapi.yml"

// Handler serves the Swagger UI backed by the staff console document.
func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(DocPath),
	)
}
