package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"activity-insights/internal/ingest"
	"activity-insights/internal/report"
	"activity-insights/internal/service"
	"activity-insights/internal/store"
)

// QueryDateLayout is the format of the from/to query parameters
const QueryDateLayout = "2006-01-02"

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	if err := s.store.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createUserRequest struct {
	GoogleID string `json:"google_id"`
	Email    string `json:"email"`
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(req.Email); err != nil || strings.ContainsAny(req.Email, "<> ") {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}

	user, err := s.store.CreateUser(strings.TrimSpace(req.GoogleID), req.Email)
	if errors.Is(err, store.ErrUserExists) {
		writeError(w, http.StatusConflict, "user already exists")
		return
	}
	if err != nil {
		s.internalError(w, "create_user", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "user_id")
	if !ok {
		return
	}

	user, err := s.store.GetUser(userID)
	if err != nil {
		s.lookupError(w, "get_user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) listActivities(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "user_id")
	if !ok {
		return
	}

	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	report, err := s.query.ActivitiesReport(userID, from, to)
	if err != nil {
		s.lookupError(w, "list_activities", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// XLSXContentType is the media type of the Excel report
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) exportReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "user_id")
	if !ok {
		return
	}

	user, err := s.store.GetUser(userID)
	if err != nil {
		s.lookupError(w, "export_report", err)
		return
	}
	rep, err := s.query.ActivitiesReport(userID, time.Time{}, time.Time{})
	if err != nil {
		s.lookupError(w, "export_report", err)
		return
	}

	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="activity-report.xlsx"`)
	err = report.Write(w, report.Data{
		UserEmail:    user.Email,
		Aggregations: rep.Aggregation,
		Monthly:      rep.TimeAggregations,
		Generated:    s.opts.Clock(),
	})
	if err != nil {
		// headers are gone; the truncated body is all the client gets
		s.log.Error("request_failed", slog.String("op", "export_report"), slog.Any("err", err))
	}
}

func (s *Server) getActivity(w http.ResponseWriter, r *http.Request) {
	activityID, ok := pathUUID(w, r, "activity_id")
	if !ok {
		return
	}

	detail, err := s.query.ActivityDetail(activityID)
	if err != nil {
		s.lookupError(w, "get_activity", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) getTrackPoints(w http.ResponseWriter, r *http.Request) {
	activityID, ok := pathUUID(w, r, "activity_id")
	if !ok {
		return
	}

	points, err := s.query.TrackPoints(activityID)
	if err != nil {
		s.internalError(w, "get_trackpoints", err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files, err := readUploadedFiles(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.imports.ImportFiles(r.Context(), userID, files)
	switch {
	case errors.Is(err, service.ErrMissingActivities), errors.Is(err, service.ErrTooManyFiles):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.lookupError(w, "upload", err)
		return
	}
	s.opts.Metrics.ObserveImport(result.Inserted, result.Skipped)
	writeJSON(w, http.StatusOK, result)
}

// readUploadedFiles collects the activity CSV and GPX files of a multipart form
func readUploadedFiles(r *http.Request) (map[string][]byte, error) {
	files := make(map[string][]byte)
	for _, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			name := service.SanitizeFilename(fh.Filename)
			if name != ingest.ActivitiesFile && !service.IsGPX(name) {
				continue
			}
			if len(files) >= service.MaxUploadFiles {
				return nil, service.ErrTooManyFiles
			}

			f, err := fh.Open()
			if err != nil {
				return nil, fmt.Errorf("reading %s", name)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("reading %s", name)
			}
			files[name] = data
		}
	}
	return files, nil
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(QueryDateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s; use YYYY-MM-DD", name)
	}
	return t, nil
}

func (s *Server) lookupError(w http.ResponseWriter, op string, err error) {
	if service.IsNotFound(err) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.internalError(w, op, err)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error("request_failed", slog.String("op", op), slog.Any("err", err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// writeJSON encodes before sending the status, so an unencodable value
// becomes a 500 instead of a 200 with a broken body
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("response_encode_failed", slog.Any("err", err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"internal error"}`+"\n")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
