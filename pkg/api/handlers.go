package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/ghostshell/pkg/codec"
	"github.com/ssargent/ghostshell/pkg/raster"
	"github.com/ssargent/ghostshell/pkg/storage"
)

// DefaultMaxUploadBytes limits request bodies when ServerConfig.MaxUploadBytes is zero
const DefaultMaxUploadBytes int64 = 32 << 20

// Server holds the API server state
type Server struct {
	service IStegoService
	images  IImageStore
	config  ServerConfig
	metrics *Metrics
	logger  *slog.Logger
}

// NewServer creates a new API server
func NewServer(service IStegoService, images IImageStore, config ServerConfig, metrics *Metrics, logger *slog.Logger) *Server {
	if config.DefaultFormat == "" {
		config.DefaultFormat = raster.DefaultFormat
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		service: service,
		images:  images,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// upload is the image and form fields of an encode, decode or capacity request
type upload struct {
	image  []byte
	text   string
	format string
}

// readUpload accepts either multipart/form-data with an "image" file part or a raw
// image body with text and format passed as query parameters.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	var mediaType string
	if ct := r.Header.Get("Content-Type"); ct != "" {
		var err error
		if mediaType, _, err = mime.ParseMediaType(ct); err != nil {
			return nil, fmt.Errorf("%w: invalid Content-Type: %v", errBadRequest, err)
		}
	}
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		q := r.URL.Query()
		return &upload{image: data, text: q.Get("text"), format: q.Get("format")}, nil
	}

	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		return nil, err
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("%w: missing image part", errBadRequest)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &upload{
		image:  data,
		text:   r.FormValue("text"),
		format: r.FormValue("format"),
	}, nil
}

var errBadRequest = errors.New("bad request")

// statusForError maps domain errors onto HTTP status codes
func statusForError(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, codec.ErrPayloadTooLarge), errors.Is(err, raster.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, codec.ErrCodepointOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, raster.ErrSourceDecode):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, raster.ErrLossyFormat), errors.Is(err, raster.ErrUnsupportedFormat),
		errors.Is(err, errBadRequest), errors.Is(err, http.ErrNotMultipart):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "operation", op, "error", err)
		sendError(w, fmt.Sprintf("%s failed", op), status)
		return
	}
	s.logger.Debug("request rejected", "operation", op, "status", status, "error", err)
	sendError(w, err.Error(), status)
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	APIResponse
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleEncode godoc
//
//	@Summary		Hide text in an image
//	@Description	Embed text into the least significant bits of a lossless carrier image
//	@Tags			stego
//	@Accept			mpfd,octet-stream
//	@Produce		json,png
//	@Param			image	formData	file	false	"Carrier image"
//	@Param			text	formData	string	false	"Text to hide"
//	@Param			format	formData	string	false	"Output format (png, bmp, tiff, qoi)"
//	@Param			store	query		bool	false	"Store the result (default true)"
//	@Success		201		{object}	EncodeResponse
//	@Failure		400		{object}	APIResponse
//	@Failure		413		{object}	APIResponse
//	@Failure		415		{object}	APIResponse
//	@Failure		422		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/encode [post]
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	up, err := s.readUpload(w, r)
	if err != nil {
		s.metrics.RecordOperation("encode", false, time.Since(start))
		s.fail(w, "encode", err)
		return
	}

	format := s.config.DefaultFormat
	if up.format != "" {
		if format, err = raster.ParseFormat(up.format); err != nil {
			s.metrics.RecordOperation("encode", false, time.Since(start))
			s.fail(w, "encode", err)
			return
		}
	}

	store := true
	if v := r.URL.Query().Get("store"); v != "" {
		if store, err = strconv.ParseBool(v); err != nil {
			s.metrics.RecordOperation("encode", false, time.Since(start))
			sendError(w, "Invalid store parameter", http.StatusBadRequest)
			return
		}
	}

	res, err := s.service.EncodeBytes(r.Context(), up.image, up.text, format)
	s.metrics.RecordOperation("encode", err == nil, time.Since(start))
	if err != nil {
		s.fail(w, "encode", err)
		return
	}
	s.metrics.RecordEmbed(res.BitsUsed, res.Capacity)

	if !store {
		w.Header().Set("Content-Type", res.Format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "encoded"+res.Format.Ext()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Data)
		return
	}

	id, err := s.images.Put(string(res.Format), res.Data)
	if err != nil {
		s.fail(w, "encode", err)
		return
	}
	s.refreshStoredImages()

	w.Header().Set("X-Image-Id", id.String())
	sendJSON(w, http.StatusCreated, EncodeResponse{
		ID:       id.String(),
		URL:      imageURL(id),
		Format:   res.Format,
		Width:    res.Width,
		Height:   res.Height,
		BitsUsed: res.BitsUsed,
		Capacity: res.Capacity,
	})
}

// handleDecode godoc
//
//	@Summary		Recover hidden text
//	@Description	Extract text hidden in an uploaded image. A missing terminator is reported as truncated.
//	@Tags			stego
//	@Accept			mpfd,octet-stream
//	@Produce		json
//	@Param			image	formData	file	false	"Carrier image"
//	@Success		200		{object}	stego.DecodeOutcome
//	@Failure		413		{object}	APIResponse
//	@Failure		415		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/decode [post]
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	up, err := s.readUpload(w, r)
	if err != nil {
		s.metrics.RecordOperation("decode", false, time.Since(start))
		s.fail(w, "decode", err)
		return
	}

	s.decode(r.Context(), w, up.image, start)
}

func (s *Server) decode(ctx context.Context, w http.ResponseWriter, data []byte, start time.Time) {
	out, err := s.service.DecodeBytes(ctx, data)
	s.metrics.RecordOperation("decode", err == nil, time.Since(start))
	if err != nil {
		s.fail(w, "decode", err)
		return
	}
	if out.Truncated {
		s.metrics.RecordTruncatedDecode()
	}
	sendSuccess(w, out)
}

// handleCapacity godoc
//
//	@Summary		Report capacity
//	@Description	Report how many bits and characters an image can carry
//	@Tags			stego
//	@Accept			mpfd,octet-stream
//	@Produce		json
//	@Param			image	formData	file	false	"Carrier image"
//	@Success		200		{object}	stego.CapacityReport
//	@Failure		415		{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/capacity [post]
func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	up, err := s.readUpload(w, r)
	if err != nil {
		s.metrics.RecordOperation("capacity", false, time.Since(start))
		s.fail(w, "capacity", err)
		return
	}

	report, err := s.service.Inspect(r.Context(), up.image)
	s.metrics.RecordOperation("capacity", err == nil, time.Since(start))
	if err != nil {
		s.fail(w, "capacity", err)
		return
	}
	sendSuccess(w, report)
}

// handleListImages godoc
//
//	@Summary		List stored images
//	@Tags			images
//	@Produce		json
//	@Success		200	{array}	ImageInfo
//	@Security		ApiKeyAuth
//	@Router			/images [get]
func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	ids, err := s.images.List()
	if err != nil {
		s.fail(w, "list", err)
		return
	}

	infos := make([]ImageInfo, 0, len(ids))
	for _, id := range ids {
		infos = append(infos, ImageInfo{ID: id.String(), URL: imageURL(id), Created: id.Time()})
	}
	sendSuccess(w, infos)
}

// handleGetImage godoc
//
//	@Summary		Download a stored image
//	@Tags			images
//	@Produce		png,octet-stream
//	@Param			id	path	string	true	"Image ID"
//	@Success		200
//	@Failure		400	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/images/{id} [get]
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := imageID(w, r)
	if !ok {
		return
	}

	var img *storage.StoredImage
	err := s.service.WithImage(r.Context(), id.String(), func(context.Context) error {
		var err error
		img, err = s.images.Get(id)
		return err
	})
	if err != nil {
		s.fail(w, "get", err)
		return
	}

	format := raster.Format(img.Format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id.String()+format.Ext()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}

// handleDeleteImage godoc
//
//	@Summary		Delete a stored image
//	@Tags			images
//	@Produce		json
//	@Param			id	path		string	true	"Image ID"
//	@Success		200	{object}	APIResponse
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/images/{id} [delete]
func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	id, ok := imageID(w, r)
	if !ok {
		return
	}

	err := s.service.WithImage(r.Context(), id.String(), func(context.Context) error {
		return s.images.Delete(id)
	})
	if err != nil {
		s.fail(w, "delete", err)
		return
	}
	s.refreshStoredImages()
	sendSuccess(w, map[string]string{"status": "deleted"})
}

// handleDecodeImage godoc
//
//	@Summary		Recover hidden text from a stored image
//	@Tags			images
//	@Produce		json
//	@Param			id	path		string	true	"Image ID"
//	@Success		200	{object}	stego.DecodeOutcome
//	@Failure		404	{object}	APIResponse
//	@Security		ApiKeyAuth
//	@Router			/images/{id}/decode [post]
func (s *Server) handleDecodeImage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := imageID(w, r)
	if !ok {
		return
	}

	err := s.service.WithImage(r.Context(), id.String(), func(ctx context.Context) error {
		img, err := s.images.Get(id)
		if err != nil {
			return err
		}
		s.decode(ctx, w, img.Data, start)
		return nil
	})
	if err != nil {
		s.metrics.RecordOperation("decode", false, time.Since(start))
		s.fail(w, "decode", err)
	}
}

func imageID(w http.ResponseWriter, r *http.Request) (ksuid.KSUID, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		sendError(w, "Image ID is required", http.StatusBadRequest)
		return ksuid.Nil, false
	}
	id, err := ksuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		sendError(w, "Invalid image ID", http.StatusBadRequest)
		return ksuid.Nil, false
	}
	return id, true
}

func imageURL(id ksuid.KSUID) string {
	return "/api/v1/images/" + id.String()
}

func (s *Server) refreshStoredImages() {
	ids, err := s.images.List()
	if err != nil {
		s.logger.Warn("failed to count stored images", "error", err)
		return
	}
	s.metrics.UpdateStoredImages(len(ids))
}

// pruneExpired removes stored images older than the retention window
func (s *Server) pruneExpired(now time.Time) (int, error) {
	if s.config.Retention <= 0 {
		return 0, nil
	}
	n, err := s.images.Prune(now.Add(-s.config.Retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.metrics.RecordPruned(n)
		s.logger.Info("pruned expired images", "count", n, "retention", s.config.Retention)
	}
	s.refreshStoredImages()
	return n, nil
}

func (s *Server) startRetentionLoop(ctx context.Context, interval time.Duration) {
	s.refreshStoredImages()
	if s.config.Retention <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := s.pruneExpired(now); err != nil {
				s.logger.Error("retention prune failed", "error", err)
			}
		}
	}
}
