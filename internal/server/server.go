package server

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"

	"github.com/sadopc/shiftr/internal/client"
)

// Server is a minimal remote record store speaking the same protocol the
// sync client expects: POST {token, action, ...} to /exec, reply
// {ok, error, rows}. Replies are always HTTP 200.
type Server struct {
	db     *sqlx.DB
	token  string
	logger *slog.Logger
}

type shiftRow struct {
	ID           string `db:"id"`
	Title        string `db:"title"`
	StartTime    string `db:"start_time"`
	EndTime      string `db:"end_time"`
	PauseMinutes int    `db:"pause_minutes"`
	WorkMinutes  int    `db:"work_minutes"`
	Distance     int    `db:"distance"`
	Notes        string `db:"notes"`
}

type request struct {
	Token  string      `json:"token"`
	Action string      `json:"action"`
	ID     string      `json:"id"`
	Record *client.Row `json:"record"`
}

func New(db *sqlx.DB, token string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{db: db, token: token, logger: logger}
}

// Handler returns the router serving POST /exec.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Post(client.EndpointSuffix, s.handleExec)
	return r
}

func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		respondError(w, "invalid JSON body")
		return
	}
	if s.token == "" || subtle.ConstantTimeCompare([]byte(req.Token), []byte(s.token)) != 1 {
		respondError(w, "unauthorized")
		return
	}

	log := s.logger.With("action", req.Action, "request_id", chimiddleware.GetReqID(r.Context()))

	switch client.Action(req.Action) {
	case client.ActionPing:
		respond(w, client.Response{OK: true})

	case client.ActionList:
		rows, err := s.list()
		if err != nil {
			log.Error("list rows", "error", err)
			respondError(w, "list failed")
			return
		}
		respond(w, client.Response{OK: true, Rows: rows})

	case client.ActionUpsert:
		if req.Record == nil || strings.TrimSpace(req.Record.ID) == "" {
			respondError(w, "missing record id")
			return
		}
		if err := s.upsert(*req.Record); err != nil {
			log.Error("upsert row", "id", req.Record.ID, "error", err)
			respondError(w, "upsert failed")
			return
		}
		respond(w, client.Response{OK: true})

	case client.ActionDelete:
		if strings.TrimSpace(req.ID) == "" {
			respondError(w, "missing id")
			return
		}
		if err := s.delete(req.ID); err != nil {
			log.Error("delete row", "id", req.ID, "error", err)
			respondError(w, "delete failed")
			return
		}
		respond(w, client.Response{OK: true})

	default:
		respondError(w, "unknown action: "+req.Action)
	}
}

func (s *Server) list() ([]client.Row, error) {
	var rows []shiftRow
	err := s.db.Select(&rows, `
		SELECT id, title, start_time, end_time, pause_minutes, work_minutes, distance, notes
		FROM shift_rows ORDER BY start_time DESC`)
	if err != nil {
		return nil, err
	}
	out := make([]client.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, client.Row{
			ID:           r.ID,
			Title:        r.Title,
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			PauseMinutes: client.FlexInt(r.PauseMinutes),
			WorkMinutes:  client.FlexInt(r.WorkMinutes),
			Distance:     client.FlexInt(r.Distance),
			Notes:        r.Notes,
		})
	}
	return out, nil
}

func (s *Server) upsert(r client.Row) error {
	_, err := s.db.NamedExec(`
		INSERT INTO shift_rows (id, title, start_time, end_time, pause_minutes, work_minutes, distance, notes, updated_at)
		VALUES (:id, :title, :start_time, :end_time, :pause_minutes, :work_minutes, :distance, :notes, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			pause_minutes = excluded.pause_minutes,
			work_minutes = excluded.work_minutes,
			distance = excluded.distance,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		map[string]any{
			"id":            r.ID,
			"title":         r.Title,
			"start_time":    r.StartTime,
			"end_time":      r.EndTime,
			"pause_minutes": int(r.PauseMinutes),
			"work_minutes":  int(r.WorkMinutes),
			"distance":      int(r.Distance),
			"notes":         r.Notes,
			"updated_at":    time.Now().UTC().Format(time.RFC3339),
		})
	return err
}

func (s *Server) delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM shift_rows WHERE id = ?`, id)
	return err
}

func respond(w http.ResponseWriter, resp client.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func respondError(w http.ResponseWriter, message string) {
	respond(w, client.Response{OK: false, Error: message})
}
