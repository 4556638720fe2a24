package service

import (
	"context"
	"encoding/json"
	"fmt"
	"letterclash-backend/internal/scrapers/letterboxd"
	"net/http"
	"strings"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type resolveRequest struct {
	Titles []string `json:"titles"`
}

type resolveResponse struct {
	Posters map[string]string `json:"posters"`
}

type clearCacheResponse struct {
	Cleared int `json:"cleared"`
}

func (s Service) writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		s.tel.ReportWarning(report_http_write, err)
	}
}

func (s Service) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJson(w, status, errorResponse{Error: err.Error()})
}

func (s Service) decodeJson(w http.ResponseWriter, r *http.Request, out any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(out)
	if err != nil {
		s.tel.ReportDebug(report_http_decode, err, r.URL.Path)
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func usernameParam(r *http.Request) (string, error) {
	username := strings.TrimSpace(r.PathValue("username"))
	if username == "" {
		return "", letterboxd.ErrEmptyUsername
	}
	return username, nil
}

// getFilms returns every film of a user, without posters.
func (s Service) getFilms(w http.ResponseWriter, r *http.Request) {
	username, err := usernameParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.ScrapeTimeout)
	defer cancel()

	films := s.scraper.ScrapeFilms(ctx, username)
	if films == nil {
		films = []letterboxd.Film{}
	}

	var rated int64
	for _, f := range films {
		if f.Rating != nil {
			rated++
		}
	}
	s.tel.ReportDebug(report_films_scrape, username, len(films))
	s.tel.ReportCount(report_films_rated, rated)

	s.writeJson(w, http.StatusOK, films)
}

// postFilmPosters fills in the poster of the films in the request body and
// returns only the films a poster was found for.
func (s Service) postFilmPosters(w http.ResponseWriter, r *http.Request) {
	var films []letterboxd.Film
	if !s.decodeJson(w, r, &films) {
		return
	}
	if len(films) > s.opts.MaxBatch {
		s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("at most %d films per request", s.opts.MaxBatch))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.PosterTimeout)
	defer cancel()

	enriched := s.resolver.Enrich(ctx, films)
	s.tel.ReportDebug(report_posters_enrich, len(films), len(enriched))

	s.writeJson(w, http.StatusOK, enriched)
}

// postResolvePosters maps titles to poster urls, unresolved titles are left
// out.
func (s Service) postResolvePosters(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !s.decodeJson(w, r, &req) {
		return
	}
	if len(req.Titles) > s.opts.MaxBatch {
		s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("at most %d titles per request", s.opts.MaxBatch))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.PosterTimeout)
	defer cancel()

	s.writeJson(w, http.StatusOK, resolveResponse{
		Posters: s.resolver.ResolveMany(ctx, req.Titles),
	})
}

func (s Service) deletePosterCache(w http.ResponseWriter, r *http.Request) {
	cleared := s.resolver.CacheSize()
	s.resolver.ClearCache()
	s.tel.ReportCount(report_posters_cache, 0)
	s.writeJson(w, http.StatusOK, clearCacheResponse{Cleared: cleared})
}

func (s Service) getDebugHtml(w http.ResponseWriter, r *http.Request) {
	username, err := usernameParam(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.ScrapeTimeout)
	defer cancel()

	html, err := s.scraper.FetchPage(ctx, username, 1)
	if err != nil {
		s.tel.ReportWarning(report_debug_html, err, username)
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write([]byte(html))
	if err != nil {
		s.tel.ReportWarning(report_http_write, err)
	}
}
