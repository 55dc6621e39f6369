package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/slicken/TextFx-Studio/internal/export"
	"github.com/slicken/TextFx-Studio/internal/history"
	"github.com/slicken/TextFx-Studio/internal/prompt"
	"github.com/slicken/TextFx-Studio/internal/studio"
	"github.com/slicken/TextFx-Studio/internal/thumbnail"
)

type textRequest struct {
	Text string `json:"text"`
}

type keyRequest struct {
	Key string `json:"key"`
}

type creativityRequest struct {
	Level int `json:"level"`
}

// imageResponse describes a history record. DataURL is only set on the
// generate response.
type imageResponse struct {
	*history.GeneratedImage
	DataURL      string `json:"dataUrl,omitempty"`
	ImageURL     string `json:"imageUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

func newImageResponse(img *history.GeneratedImage) imageResponse {
	return imageResponse{
		GeneratedImage: img,
		ImageURL:       "/api/history/" + img.ID + "/image",
		ThumbnailURL:   "/api/history/" + img.ID + "/thumbnail",
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.app.Catalog)
}

// --- Configuration store ---

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.sessions.FromRequest(w, r).Store().Snapshot())
}

func (s *Server) handleSetText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, s.sessions.FromRequest(w, r).Store().SetText(req.Text))
}

func (s *Server) handleSelectStyle(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondConfig(w, func() (studio.TextConfig, error) {
		return s.sessions.FromRequest(w, r).Store().SelectStyle(req.Key)
	})
}

func (s *Server) handleCustomStyle(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, s.sessions.FromRequest(w, r).Store().SetCustomStyle(req.Text))
}

func (s *Server) handleToggleEffect(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	respondConfig(w, func() (studio.TextConfig, error) {
		return s.sessions.FromRequest(w, r).Store().ToggleEffect(key)
	})
}

func (s *Server) handleCustomEffect(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, s.sessions.FromRequest(w, r).Store().SetCustomEffect(req.Text))
}

func (s *Server) handleClearCustomEffect(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.sessions.FromRequest(w, r).Store().ClearCustomEffect())
}

func (s *Server) handleSelectBackground(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondConfig(w, func() (studio.TextConfig, error) {
		return s.sessions.FromRequest(w, r).Store().SelectBackground(req.Key)
	})
}

func (s *Server) handleCustomBackground(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, s.sessions.FromRequest(w, r).Store().SetCustomBackground(req.Text))
}

func (s *Server) handleCreativity(w http.ResponseWriter, r *http.Request) {
	var req creativityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	respondConfig(w, func() (studio.TextConfig, error) {
		return s.sessions.FromRequest(w, r).Store().SetCreativity(req.Level)
	})
}

func (s *Server) handleRandomize(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.sessions.FromRequest(w, r).Store().Randomize())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.sessions.FromRequest(w, r).Store().Reset())
}

func respondConfig(w http.ResponseWriter, mutate func() (studio.TextConfig, error)) {
	cfg, err := mutate()
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// --- Generation ---

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	p, err := prompt.Compile(s.sessions.FromRequest(w, r).Store().Snapshot())
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"prompt": p})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.FromRequest(w, r)
	img, err := sess.Generate(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	resp := newImageResponse(img)
	resp.DataURL = img.DataURL()
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.sessions.FromRequest(w, r).Status())
}

func (s *Server) handleDismissNotice(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.FromRequest(w, r)
	sess.DismissNotice()
	respondJSON(w, http.StatusOK, sess.Status())
}

// --- History ---

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	list, err := s.sessions.FromRequest(w, r).History().List(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	out := make([]imageResponse, len(list))
	for i, img := range list {
		out[i] = newImageResponse(img)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	img, err := s.sessions.FromRequest(w, r).Select(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newImageResponse(img))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*history.GeneratedImage, bool) {
	id := chi.URLParam(r, "id")
	img, err := s.sessions.FromRequest(w, r).History().Get(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return nil, false
	}
	if img == nil {
		respondErr(w, fmt.Errorf("%w: %s", history.ErrNotFound, id))
		return nil, false
	}
	return img, true
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	img, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Cache-Control", "private, max-age=86400, immutable")
	w.Write(img.Data)
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	img, ok := s.lookup(w, r)
	if !ok {
		return
	}
	thumb, err := thumbnail.Make(img.Data, thumbnail.DefaultMaxDimension)
	if err != nil {
		httpError(w, http.StatusUnprocessableEntity, "image cannot be previewed", err.Error())
		return
	}
	w.Header().Set("Content-Type", thumbnail.MIMEType)
	w.Header().Set("Cache-Control", "private, max-age=86400, immutable")
	w.Write(thumb)
}

// --- Export ---

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	img, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.export(w, r.Context(), img)
}

func (s *Server) handleExportCurrent(w http.ResponseWriter, r *http.Request) {
	current := s.sessions.FromRequest(w, r).Status().Current
	if current == nil {
		respondErr(w, export.ErrNoImage)
		return
	}
	s.export(w, r.Context(), current)
}

func (s *Server) export(w http.ResponseWriter, ctx context.Context, img *history.GeneratedImage) {
	location, err := s.app.Exporter.Export(ctx, img)
	if err != nil {
		respondErr(w, err)
		return
	}
	log.Info().Str("image", img.ID).Str("location", location).Msg("Image exported")
	respondJSON(w, http.StatusOK, map[string]string{"location": location})
}

func (s *Server) handleBundle(w http.ResponseWriter, r *http.Request) {
	list, err := s.sessions.FromRequest(w, r).History().List(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	name := fmt.Sprintf("%shistory-%d.zip", export.FilePrefix, time.Now().UnixMilli())
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	if err := export.Bundle(w, list); err != nil {
		// Headers are already sent.
		log.Error().Err(err).Int("images", len(list)).Msg("Failed to write history bundle")
	}
}
