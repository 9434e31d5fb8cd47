// Package web exposes the engine over a small JSON API. Presentation owns
// rendering; this surface only hands it the assembled bucket lists and
// accepts the mutation entry points.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"gridcal/internal/config"
	"gridcal/internal/engine"
	appLog "gridcal/internal/log"
	"gridcal/internal/model"
	"gridcal/internal/nav"
	"gridcal/internal/normalize"
	"gridcal/internal/view"
)

// Server routes API requests to the engine.
type Server struct {
	cfg    *config.Config
	eng    *engine.Engine
	router *mux.Router
}

func NewServer(cfg *config.Config, eng *engine.Engine) *Server {
	s := &Server{
		cfg:    cfg,
		eng:    eng,
		router: mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/grid", s.handleGrid).Methods(http.MethodGet)
	s.router.HandleFunc("/api/navigate", s.handleNavigate).Methods(http.MethodPost)
	s.router.HandleFunc("/api/select/date", s.handleSelectDate).Methods(http.MethodPost)
	s.router.HandleFunc("/api/select/entity", s.handleSelectEntity).Methods(http.MethodPost)
	s.router.HandleFunc("/api/config", s.handleConfig).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// bucketDTO is the JSON view of one bucket.
type bucketDTO struct {
	Date          string     `json:"date"`
	Slot          string     `json:"slot,omitempty"`
	CurrentPeriod bool       `json:"current_period"`
	Today         bool       `json:"today"`
	Selected      bool       `json:"selected"`
	Events        []eventDTO `json:"events"`
}

type eventDTO struct {
	Title      string            `json:"title"`
	Day        string            `json:"day"`
	Start      string            `json:"start,omitempty"`
	End        string            `json:"end,omitempty"`
	Color      string            `json:"color"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type gridResponse struct {
	Layout        model.Layout `json:"layout"`
	Reference     string       `json:"reference"`
	WeekdayLabels []string     `json:"weekday_labels"`
	MonthLabel    string       `json:"month_label"`
	TodayLabel    string       `json:"today_label"`
	Buckets       []bucketDTO  `json:"buckets"`
}

// handleGrid returns the assembled bucket list for ?layout=month|week|day.
// Configuration-level pipeline errors surface as a single inline message
// with 422; no partial grid is ever returned.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	layout, err := model.ParseLayout(r.URL.Query().Get("layout"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	buckets, err := s.eng.Grid(layout)
	if err != nil {
		var missingCfg *normalize.MissingConfigurationError
		var missingField *normalize.MissingFieldError
		if errors.As(err, &missingCfg) || errors.As(err, &missingField) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		appLog.Error("grid build failed", err, "layout", layout)
		writeError(w, http.StatusInternalServerError, "failed to build grid")
		return
	}

	ref := s.eng.Reference()
	resp := gridResponse{
		Layout:        layout,
		Reference:     ref.String(),
		WeekdayLabels: view.WeekdayLabels(s.cfg.View.Locale, s.cfg.WeekStart(), s.cfg.View.WorkdaysOnly),
		MonthLabel:    view.MonthLabel(s.cfg.View.Locale, ref.Month),
		TodayLabel:    view.TodayLabel(s.cfg.View.Locale),
		Buckets:       make([]bucketDTO, 0, len(buckets)),
	}

	for _, b := range buckets {
		dto := bucketDTO{
			Date:          b.Date.String(),
			CurrentPeriod: b.CurrentPeriod,
			Today:         b.Today,
			Selected:      b.Selected,
			Events:        make([]eventDTO, 0, len(b.Events)),
		}
		if b.Slot != nil {
			dto.Slot = view.FormatSlot(*b.Slot, s.cfg.View.TimeFormat)
		}
		for _, ev := range b.Events {
			e := eventDTO{
				Title:      ev.Title,
				Day:        ev.Day.String(),
				Color:      ev.Color,
				Attributes: ev.Attributes,
			}
			if ev.Start != nil {
				e.Start = view.FormatSlot(*ev.Start, s.cfg.View.TimeFormat)
			}
			if ev.End != nil {
				e.End = view.FormatSlot(*ev.End, s.cfg.View.TimeFormat)
			}
			dto.Events = append(dto.Events, e)
		}
		resp.Buckets = append(resp.Buckets, dto)
	}

	writeJSON(w, http.StatusOK, resp)
}

type navigateRequest struct {
	Unit  string `json:"unit"`
	Delta int    `json:"delta"`
	Today bool   `json:"today"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var ref model.CalendarDate
	if req.Today {
		ref = s.eng.GoToToday()
	} else {
		unit, err := nav.ParseUnit(req.Unit)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Delta == 0 {
			writeError(w, http.StatusBadRequest, "delta must be non-zero")
			return
		}
		ref = s.eng.Navigate(unit, req.Delta)
	}

	writeJSON(w, http.StatusOK, map[string]string{"reference": ref.String()})
}

type selectDateRequest struct {
	Date string `json:"date"`
}

func (s *Server) handleSelectDate(w http.ResponseWriter, r *http.Request) {
	var req selectDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d, err := model.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if err := s.eng.SelectDate(r.Context(), d); err != nil {
		appLog.Error("date selection write-back failed", err, "date", d)
		writeError(w, http.StatusBadGateway, "selection write-back failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"selected": d.String()})
}

func (s *Server) handleSelectEntity(w http.ResponseWriter, r *http.Request) {
	var rec model.RawRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.eng.SelectEntity(r.Context(), rec); err != nil {
		appLog.Error("entity selection write-back failed", err)
		writeError(w, http.StatusBadGateway, "selection write-back failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"selected": true})
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
