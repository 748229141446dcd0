package article

import (
	"net/http"

	"newsreader/internal/domain/entity"
	"newsreader/internal/handler/http/respond"
)

// CountriesHandler lists the markets accepted by GET /headlines?country=.
type CountriesHandler struct{}

func (CountriesHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	countries := entity.SupportedCountries()
	out := make([]CountryDTO, 0, len(countries))
	for _, c := range countries {
		out = append(out, CountryDTO{Code: c.Code, Name: c.Name, Flag: entity.FlagEmoji(c.Code)})
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	respond.JSON(w, http.StatusOK, map[string]any{"data": out, "default": entity.DefaultCountry})
}
