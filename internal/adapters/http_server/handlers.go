// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"ratescope/internal/app"
	"ratescope/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	C *app.CompetitorService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/hotels", h.searchByCity)
	s.mux.Get("/v1/hotels/search", h.searchByName)
	s.mux.Get("/v1/hotels/{key}", h.getHotel)
	s.mux.Get("/v1/hotels/{key}/competitor-candidates", h.competitorCandidates)
	s.mux.Post("/v1/hotels/{key}/competitors", h.addCompetitor)
	s.mux.Delete("/v1/hotels/{key}/competitors/{competitorKey}", h.removeCompetitor)
	s.mux.Patch("/v1/hotels/{key}/competitors/{competitorKey}", h.changeCompetitorType)
	s.mux.Put("/v1/hotels/{key}/suggested-competitors", h.replaceSuggested)
}

func writeProblem(w http.ResponseWriter, status int, title, code, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Code: code, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeDomainErr maps the sentinel taxonomy onto HTTP statuses with a
// distinguishing code per case.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "not_found", err.Error())
	case errors.Is(err, domain.ErrDuplicateCompetitor):
		writeProblem(w, http.StatusConflict, "Conflict", "duplicate_competitor", err.Error())
	case errors.Is(err, domain.ErrCompetitorLimit):
		writeProblem(w, http.StatusUnprocessableEntity, "Limit Exceeded", "limit_exceeded", err.Error())
	case errors.Is(err, domain.ErrSelfCompetitor):
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid Competitor", "self_competitor", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "internal", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSONWithETag(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

type hotelDTO struct {
	Key                  string                 `json:"key"`
	Name                 *string                `json:"name"`
	Description          *string                `json:"description,omitempty"`
	Country              *string                `json:"country,omitempty"`
	State                *string                `json:"state,omitempty"`
	City                 *string                `json:"city,omitempty"`
	Latitude             *float64               `json:"latitude,omitempty"`
	Longitude            *float64               `json:"longitude,omitempty"`
	StarRating           *int                   `json:"star_rating,omitempty"`
	CheckInTime          *string                `json:"check_in_time,omitempty"`
	CheckOutTime         *string                `json:"check_out_time,omitempty"`
	Amenities            json.RawMessage        `json:"amenities,omitempty"`
	NearbyPlaces         json.RawMessage        `json:"nearby_places,omitempty"`
	Competitors          []domain.CompetitorRef `json:"competitors"`
	SuggestedCompetitors []string               `json:"suggested_competitors"`
}

func toDTO(h domain.HotelRecord) hotelDTO {
	return hotelDTO{
		Key:                  h.Key,
		Name:                 h.Name,
		Description:          h.Description,
		Country:              h.Country,
		State:                h.State,
		City:                 h.City,
		Latitude:             h.Lat,
		Longitude:            h.Lon,
		StarRating:           h.StarRating,
		CheckInTime:          h.CheckInTime,
		CheckOutTime:         h.CheckOutTime,
		Amenities:            h.Amenities.Document(),
		NearbyPlaces:         h.NearbyPlaces,
		Competitors:          h.Competitors,
		SuggestedCompetitors: h.SuggestedCompetitors,
	}
}

func toDTOs(hs []domain.HotelRecord) []hotelDTO {
	out := make([]hotelDTO, 0, len(hs))
	for _, h := range hs {
		out = append(out, toDTO(h))
	}
	return out
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Q.GetHotel(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSONWithETag(w, r, toDTO(rec))
}

func (h *Handlers) searchByCity(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Parameter", "bad_request", "city is required")
		return
	}
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)
	if page < 1 || pageSize < 1 || pageSize > 100 {
		writeProblem(w, http.StatusBadRequest, "Invalid Pagination", "bad_request", "page must be >= 1, page_size between 1 and 100")
		return
	}

	out, err := h.Q.SearchByCity(r.Context(), city, page, pageSize)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSONWithETag(w, r, struct {
		Items []hotelDTO `json:"items"`
		Total int        `json:"total"`
	}{Items: toDTOs(out.Items), Total: out.Total})
}

func (h *Handlers) searchByName(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Parameter", "bad_request", "q is required")
		return
	}
	q := domain.NameSearch{Term: term}
	for k, dst := range map[string]**string{"country": &q.Country, "state": &q.State, "city": &q.City} {
		if v := r.URL.Query().Get(k); v != "" {
			vv := v
			*dst = &vv
		}
	}
	out, err := h.Q.SearchByName(r.Context(), q)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSONWithETag(w, r, struct {
		Items []hotelDTO `json:"items"`
	}{Items: toDTOs(out)})
}

type competitorBody struct {
	CompetitorKey string                `json:"competitor_key"`
	Type          domain.CompetitorType `json:"type"`
}

func (h *Handlers) addCompetitor(w http.ResponseWriter, r *http.Request) {
	var body competitorBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CompetitorKey == "" || !body.Type.Valid() {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "bad_request", "competitor_key and type (primary|secondary) are required")
		return
	}
	if err := h.C.Add(r.Context(), chi.URLParam(r, "key"), body.CompetitorKey, body.Type); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) removeCompetitor(w http.ResponseWriter, r *http.Request) {
	if err := h.C.Remove(r.Context(), chi.URLParam(r, "key"), chi.URLParam(r, "competitorKey")); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) changeCompetitorType(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type domain.CompetitorType `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.Type.Valid() {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "bad_request", "type must be primary or secondary")
		return
	}
	if err := h.C.ChangeType(r.Context(), chi.URLParam(r, "key"), chi.URLParam(r, "competitorKey"), body.Type); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) replaceSuggested(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Keys []string `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "bad_request", "keys array is required")
		return
	}
	if err := h.C.ReplaceSuggested(r.Context(), chi.URLParam(r, "key"), body.Keys); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) competitorCandidates(w http.ResponseWriter, r *http.Request) {
	out, err := h.C.FindCandidates(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSONWithETag(w, r, struct {
		Items []hotelDTO `json:"items"`
	}{Items: toDTOs(out)})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
