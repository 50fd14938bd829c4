package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
)

// ExchangeHandler serves the read-side query API consumed by the
// presentation layer (the chat bot lives elsewhere and talks to this).
type ExchangeHandler struct {
	rates    domain.RateUsecase
	offices  domain.OfficeUsecase
	sessions domain.SessionUsecase
}

func NewExchangeHandler(rates domain.RateUsecase, offices domain.OfficeUsecase, sessions domain.SessionUsecase) *ExchangeHandler {
	return &ExchangeHandler{
		rates:    rates,
		offices:  offices,
		sessions: sessions,
	}
}

func (h *ExchangeHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/rates/latest", h.latestRates)
	mux.HandleFunc("GET /api/rates/best", h.bestRates)
	mux.HandleFunc("GET /api/offices/nearest", h.nearestOffice)
	mux.HandleFunc("POST /api/sessions", h.saveSession)
	mux.HandleFunc("GET /api/sessions/{chatID}", h.getSession)
	mux.HandleFunc("DELETE /api/sessions/{chatID}", h.deleteSession)
}

type errorResponse struct {
	Error string `json:"error"`
}

type rateRowResponse struct {
	Organization string   `json:"organization"`
	USD          *float64 `json:"usd,omitempty"`
	EUR          *float64 `json:"eur,omitempty"`
	RUB          *float64 `json:"rub,omitempty"`
}

type latestRatesResponse struct {
	ObservedAt *time.Time        `json:"observed_at,omitempty"`
	Rows       []rateRowResponse `json:"rows"`
}

type orgRateResponse struct {
	Organization string  `json:"organization"`
	Rate         float64 `json:"rate"`
}

type bestRatesResponse struct {
	SellCurrency string            `json:"sell_currency"`
	GetCurrency  string            `json:"get_currency"`
	Rates        []orgRateResponse `json:"rates"`
}

type scheduleEntryResponse struct {
	Day      int `json:"day"`
	OpensAt  int `json:"opens_at"`
	ClosesAt int `json:"closes_at"`
}

type officeRateResponse struct {
	Currency string  `json:"currency"`
	Buy      float64 `json:"buy"`
	Sell     float64 `json:"sell"`
}

type nearestOfficeResponse struct {
	Organization string                  `json:"organization"`
	Office       string                  `json:"office"`
	Address      string                  `json:"address"`
	Lat          float64                 `json:"lat"`
	Lng          float64                 `json:"lng"`
	DistanceKm   float64                 `json:"distance_km"`
	IsOpen       bool                    `json:"is_open"`
	Rates        []officeRateResponse    `json:"rates,omitempty"`
	Schedule     []scheduleEntryResponse `json:"schedule,omitempty"`
}

type sessionRequest struct {
	ChatID       int64  `json:"chat_id"`
	Mode         string `json:"mode"`
	SellCurrency string `json:"sell_currency"`
	GetCurrency  string `json:"get_currency"`
	OpenOnly     bool   `json:"open_only"`
}

type sessionResponse struct {
	ChatID       int64     `json:"chat_id"`
	Mode         string    `json:"mode"`
	SellCurrency string    `json:"sell_currency,omitempty"`
	GetCurrency  string    `json:"get_currency,omitempty"`
	OpenOnly     bool      `json:"open_only"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (h *ExchangeHandler) latestRates(w http.ResponseWriter, r *http.Request) {
	rows, err := h.rates.LatestRatesTable()
	if err != nil {
		h.serverError(w, err)
		return
	}
	observedAt, err := h.rates.LatestObservation()
	if err != nil {
		h.serverError(w, err)
		return
	}

	resp := latestRatesResponse{ObservedAt: observedAt}
	for _, row := range rows {
		resp.Rows = append(resp.Rows, rateRowResponse{
			Organization: row.OrganizationName,
			USD:          row.USD,
			EUR:          row.EUR,
			RUB:          row.RUB,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ExchangeHandler) bestRates(w http.ResponseWriter, r *http.Request) {
	sell := strings.ToUpper(r.URL.Query().Get("sell"))
	get := strings.ToUpper(r.URL.Query().Get("get"))
	if sell == "" || get == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "sell and get query parameters are required"})
		return
	}

	ranked, err := h.rates.BestRatesForPair(sell, get)
	if errors.Is(err, domain.ErrNoRatesForPair) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}

	resp := bestRatesResponse{SellCurrency: sell, GetCurrency: get}
	for _, entry := range ranked {
		resp.Rates = append(resp.Rates, orgRateResponse{
			Organization: entry.OrganizationName,
			Rate:         entry.Rate,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ExchangeHandler) nearestOffice(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lat, latErr := strconv.ParseFloat(query.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(query.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lat and lng query parameters are required"})
		return
	}

	filter := domain.OfficeFilter{
		OpenOnly:     query.Get("open_only") == "true",
		SellCurrency: strings.ToUpper(query.Get("sell")),
		GetCurrency:  strings.ToUpper(query.Get("get")),
	}

	result, err := h.offices.FindNearestOffice(lat, lng, filter)
	switch {
	case errors.Is(err, domain.ErrNoOfficesFound),
		errors.Is(err, domain.ErrNoOpenOffices),
		errors.Is(err, domain.ErrNoBestRateOffices):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	case err != nil:
		h.serverError(w, err)
		return
	}

	resp := nearestOfficeResponse{
		Organization: result.Organization.Name,
		Office:       result.Office.Name,
		Address:      result.Office.Address,
		Lat:          result.Office.Lat,
		Lng:          result.Office.Lng,
		DistanceKm:   result.DistanceKm,
		IsOpen:       result.IsOpen,
	}
	for _, rate := range result.Rates {
		resp.Rates = append(resp.Rates, officeRateResponse{
			Currency: rate.Currency,
			Buy:      rate.BuyRate,
			Sell:     rate.SellRate,
		})
	}
	for _, entry := range result.Schedule {
		resp.Schedule = append(resp.Schedule, scheduleEntryResponse{
			Day:      entry.Day,
			OpensAt:  entry.OpensAt,
			ClosesAt: entry.ClosesAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ExchangeHandler) saveSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.ChatID == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "chat_id is required"})
		return
	}

	session := &domain.SearchSession{
		ChatID:       req.ChatID,
		Mode:         req.Mode,
		SellCurrency: strings.ToUpper(req.SellCurrency),
		GetCurrency:  strings.ToUpper(req.GetCurrency),
		OpenOnly:     req.OpenOnly,
	}
	if err := h.sessions.SaveSession(session); err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *ExchangeHandler) getSession(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(r.PathValue("chatID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid chat id"})
		return
	}

	session, err := h.sessions.GetSession(chatID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *ExchangeHandler) deleteSession(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.ParseInt(r.PathValue("chatID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid chat id"})
		return
	}
	if err := h.sessions.ClearSession(chatID); err != nil {
		h.serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toSessionResponse(session *domain.SearchSession) sessionResponse {
	return sessionResponse{
		ChatID:       session.ChatID,
		Mode:         session.Mode,
		SellCurrency: session.SellCurrency,
		GetCurrency:  session.GetCurrency,
		OpenOnly:     session.OpenOnly,
		ExpiresAt:    session.ExpiresAt,
	}
}

func (h *ExchangeHandler) serverError(w http.ResponseWriter, err error) {
	slog.Error("query handler failure", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
