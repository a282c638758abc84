// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tomoacademy/qr"
	"github.com/tomoacademy/qr/coding"
)

type qrResponse struct {
	DataURL    string `json:"data_url"`
	Modules    int    `json:"modules"`
	ModuleSize int    `json:"module_size"`
}

// params returns the text and image size requested by r.
func (s *Server) params(r *http.Request) (string, int, error) {
	q := r.URL.Query()
	size := qr.DefaultSize
	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > s.MaxSize {
			return "", 0, fmt.Errorf("size must be between 1 and %d", s.MaxSize)
		}
		size = n
	}
	return q.Get("text"), size, nil
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	text, size, err := s.params(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := coding.Build(text)
	if err != nil {
		s.Log.Error().Err(err).Msg("build symbol")
		writeError(w, http.StatusInternalServerError, "cannot encode text")
		return
	}
	url, err := s.Renderer.Render(c, size)
	if err != nil {
		s.Log.Error().Err(err).Int("size", size).Msg("render symbol")
		writeError(w, http.StatusInternalServerError, "cannot render image")
		return
	}
	if url == "" {
		writeError(w, http.StatusServiceUnavailable, "no drawing surface")
		return
	}
	writeJSON(w, http.StatusOK, qrResponse{
		DataURL:    url,
		Modules:    c.Size,
		ModuleSize: qr.ModuleSize(size, c.Size),
	})
}

func (s *Server) handleQRPNG(w http.ResponseWriter, r *http.Request) {
	text, size, err := s.params(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := coding.Build(text)
	if err != nil {
		s.Log.Error().Err(err).Msg("build symbol")
		writeError(w, http.StatusInternalServerError, "cannot encode text")
		return
	}
	png, err := s.Renderer.PNG(c, size)
	if errors.Is(err, qr.ErrNoSurface) {
		writeError(w, http.StatusServiceUnavailable, "no drawing surface")
		return
	}
	if err != nil {
		s.Log.Error().Err(err).Int("size", size).Msg("render symbol")
		writeError(w, http.StatusInternalServerError, "cannot render image")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		s.Log.Debug().Err(err).Int("size", size).Msg("write response")
	}
}
