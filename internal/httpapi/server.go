// Package httpapi exposes move generation, hashing, perft and search over
// HTTP, with per-iteration search info streamed to websocket clients.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/hailam/megalodon/internal/board"
	"github.com/hailam/megalodon/internal/engine"
	"github.com/hailam/megalodon/internal/pgn"
	"github.com/hailam/megalodon/internal/storage"
)

const (
	maxJSONBodyBytes int64 = 1 << 20
	maxPerftDepth          = 6
	maxSearchDepth         = 32
	maxSearchTime          = 20 * time.Second
)

// Server wires the HTTP layer to an engine session and optional storage.
type Server struct {
	engine *engine.Engine
	store  *storage.Storage
	router *mux.Router

	// LogOutput receives the request log. It defaults to stdout.
	LogOutput io.Writer

	upgrader  websocket.Upgrader
	clientsMu sync.RWMutex
	clients   map[*client]struct{}

	srvMu sync.Mutex
	srv   *http.Server
}

type client struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (c *client) send(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteJSON(v)
}

// NewServer builds a Server. store may be nil.
func NewServer(eng *engine.Engine, store *storage.Storage) *Server {
	s := &Server{
		engine:    eng,
		store:     store,
		router:    mux.NewRouter(),
		LogOutput: os.Stdout,
		clients:   make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	eng.OnInfo = func(info engine.Info) {
		s.broadcast(newInfoMessage("info", info.Depth, info.Score, info.Nodes, info.Time, info.PV))
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.NotFoundHandler = http.HandlerFunc(notFoundHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(withJSON)
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)
	api.HandleFunc("/moves", s.handleMoves).Methods(http.MethodGet)
	api.HandleFunc("/push", s.handlePush).Methods(http.MethodPost)
	api.HandleFunc("/hash", s.handleHash).Methods(http.MethodGet)
	api.HandleFunc("/perft", s.handlePerft).Methods(http.MethodGet)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodPost)
	api.HandleFunc("/analysis", s.handleAnalysis).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.wsHandler)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// Handler returns the router wrapped in request logging and panic recovery.
func (s *Server) Handler() http.Handler {
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(
		handlers.LoggingHandler(s.LogOutput, s.router))
}

// Listen starts the HTTP server.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      maxSearchTime + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	log.Printf("HTTP listening on %s", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops any running search and attempts a graceful shutdown.
func (s *Server) Close(ctx context.Context) error {
	s.engine.Stop()

	s.clientsMu.Lock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.clients = make(map[*client]struct{})
	s.clientsMu.Unlock()

	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ---- JSON helpers ----

func withJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	writeJSON(w, map[string]string{"error": msg})
}

// writeErr maps package errors to status codes.
func writeErr(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, board.ErrInvalidFEN),
		errors.Is(err, board.ErrInvalidMove),
		errors.Is(err, board.ErrIllegalMove),
		errors.Is(err, pgn.ErrInvalidPGN),
		errors.Is(err, errBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

var errBadRequest = errors.New("bad request")

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "File Not Found", http.StatusNotFound)
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// positionParam reads the "fen" query parameter, defaulting to the start
// position.
func positionParam(r *http.Request) (board.Position, error) {
	fen := r.URL.Query().Get("fen")
	if fen == "" {
		return board.NewPosition(), nil
	}
	return board.ParseFEN(fen)
}

func moveStrings(moves []board.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

// ---- API: board ----

type movesResponse struct {
	FEN       string   `json:"fen"`
	Moves     []string `json:"moves"`
	Check     bool     `json:"check"`
	Checkmate bool     `json:"checkmate"`
	Stalemate bool     `json:"stalemate"`
	Drawn     bool     `json:"insufficient_material"`
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	pos, err := positionParam(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	moves := pos.Moves()
	check := pos.InCheck()
	writeJSON(w, movesResponse{
		FEN:       pos.FEN(),
		Moves:     moveStrings(moves),
		Check:     check,
		Checkmate: check && len(moves) == 0,
		Stalemate: !check && len(moves) == 0,
		Drawn:     pos.IsInsufficientMaterial(),
	})
}

type pushRequest struct {
	FEN  string `json:"fen"`
	Move string `json:"move"`
}

type positionResponse struct {
	FEN  string `json:"fen"`
	Hash string `json:"hash"`
}

func (s *Server) positionResponse(pos *board.Position) positionResponse {
	return positionResponse{FEN: pos.FEN(), Hash: fmt.Sprintf("%016x", s.engine.Hash(pos))}
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var body pushRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	pos := board.NewPosition()
	if body.FEN != "" {
		var err error
		if pos, err = board.ParseFEN(body.FEN); err != nil {
			writeErr(w, err)
			return
		}
	}
	m, err := board.FindMove(&pos, body.Move)
	if err != nil {
		writeErr(w, err)
		return
	}
	next := pos.Push(m)
	writeJSON(w, s.positionResponse(&next))
}

func (s *Server) handleHash(w http.ResponseWriter, r *http.Request) {
	pos, err := positionParam(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, s.positionResponse(&pos))
}

type perftResponse struct {
	Depth  int               `json:"depth"`
	Nodes  uint64            `json:"nodes"`
	Divide map[string]uint64 `json:"divide"`
	TimeMS int64             `json:"time_ms"`
}

func (s *Server) handlePerft(w http.ResponseWriter, r *http.Request) {
	pos, err := positionParam(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	depth, err := strconv.Atoi(r.URL.Query().Get("depth"))
	if err != nil || depth < 1 || depth > maxPerftDepth {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("depth must be 1..%d", maxPerftDepth))
		return
	}

	start := time.Now()
	div := board.Divide(&pos, depth)
	var nodes uint64
	for _, n := range div {
		nodes += n
	}
	writeJSON(w, perftResponse{Depth: depth, Nodes: nodes, Divide: div, TimeMS: time.Since(start).Milliseconds()})
}

// ---- API: search ----

type searchRequest struct {
	FEN        string `json:"fen"`
	PGN        string `json:"pgn"`
	Depth      int    `json:"depth"`
	MoveTimeMS int    `json:"movetime_ms"`
}

// message is both the search response and the websocket payload.
type message struct {
	Type      string   `json:"type"`
	FEN       string   `json:"fen,omitempty"`
	BestMove  string   `json:"best_move,omitempty"`
	PV        []string `json:"pv"`
	Score     float64  `json:"score"`
	ScoreText string   `json:"score_text"`
	Depth     int      `json:"depth"`
	Nodes     uint64   `json:"nodes"`
	TimeMS    int64    `json:"time_ms"`
	Stopped   bool     `json:"stopped,omitempty"`
}

func newInfoMessage(typ string, depth int, score float64, nodes uint64, elapsed time.Duration, pv []board.Move) message {
	return message{
		Type:      typ,
		PV:        moveStrings(pv),
		Score:     score,
		ScoreText: engine.ScoreString(score),
		Depth:     depth,
		Nodes:     nodes,
		TimeMS:    elapsed.Milliseconds(),
	}
}

func (s *Server) searchPosition(body *searchRequest) (board.Position, error) {
	switch {
	case body.PGN != "":
		g, err := pgn.Import(body.PGN)
		if err != nil {
			return board.Position{}, err
		}
		return g.Final, nil
	case body.FEN != "":
		return board.ParseFEN(body.FEN)
	default:
		return board.NewPosition(), nil
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	pos, err := s.searchPosition(&body)
	if err != nil {
		writeErr(w, err)
		return
	}
	if body.Depth < 0 || body.Depth > maxSearchDepth || body.MoveTimeMS < 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("depth must be 0..%d and movetime_ms non-negative", maxSearchDepth))
		return
	}

	limits := engine.Limits{Depth: body.Depth, MoveTime: time.Duration(body.MoveTimeMS) * time.Millisecond}
	if limits.MoveTime <= 0 || limits.MoveTime > maxSearchTime {
		limits.MoveTime = maxSearchTime
	}
	res := s.engine.Search(r.Context(), pos, limits)

	msg := newInfoMessage("bestmove", res.Depth, res.Score, res.Nodes, res.Time, res.PV)
	msg.FEN = pos.FEN()
	msg.Stopped = res.Stopped
	if res.BestMove != board.NoMove {
		msg.BestMove = res.BestMove.String()
		s.record(&msg, res.Time)
	}
	s.broadcast(msg)
	writeJSON(w, msg)
}

func (s *Server) record(msg *message, elapsed time.Duration) {
	if s.store == nil {
		return
	}
	err := s.store.RecordAnalysis(&storage.Analysis{
		FEN:      msg.FEN,
		BestMove: msg.BestMove,
		PV:       msg.PV,
		Score:    msg.Score,
		Depth:    msg.Depth,
		Nodes:    msg.Nodes,
		Time:     elapsed,
	})
	if err != nil {
		log.Printf("record analysis: %v", err)
	}
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeErr(w, fmt.Errorf("%w: no storage attached", storage.ErrNotFound))
		return
	}
	fen := r.URL.Query().Get("fen")
	if fen == "" {
		list, err := s.store.Analyses(0)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, map[string]any{"analyses": list})
		return
	}
	pos, err := board.ParseFEN(fen)
	if err != nil {
		writeErr(w, err)
		return
	}
	a, err := s.store.LookupAnalysis(pos.FEN())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, a)
}

// ---- websocket ----

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // Upgrade has already replied
	}
	c := &client{conn: conn}
	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	s.clientsMu.Unlock()
	if err := c.send(message{Type: "hello"}); err != nil {
		log.Printf("websocket hello to %s: %v", conn.RemoteAddr(), err)
	}

	go func() {
		defer func() {
			s.clientsMu.Lock()
			delete(s.clients, c)
			s.clientsMu.Unlock()
			conn.Close()
		}()
		for {
			var cmd struct {
				Type string `json:"type"`
			}
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			if cmd.Type == "stop" {
				s.engine.Stop()
			}
		}
	}()
}

func (s *Server) broadcast(v any) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for c := range s.clients {
		if err := c.send(v); err != nil {
			log.Printf("websocket send to %s: %v", c.conn.RemoteAddr(), err)
		}
	}
}
