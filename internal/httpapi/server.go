// Package httpapi is a thin JSON produce/consume surface over a
// partition, for callers that don't need the wire efficiency of a
// dedicated binary protocol.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kunleyo/partlog/internal/log"
)

// NewHTTPServer builds an *http.Server routing produce/consume requests to
// partition.
func NewHTTPServer(addr string, partition *log.Partition, logger *zap.Logger) *http.Server {
	srv := &httpServer{partition: partition, logger: namedLogger(logger)}
	router := mux.NewRouter()
	router.HandleFunc("/", srv.handleProduce).Methods("POST")
	router.HandleFunc("/{offset:[0-9]+}", srv.handleConsume).Methods("GET")
	return &http.Server{
		Addr:    addr,
		Handler: router,
	}
}

func namedLogger(l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return l.Named("httpapi")
}

type httpServer struct {
	partition *log.Partition
	logger    *zap.Logger
}

type ProduceRequest struct {
	Value []byte `json:"value"`
}
type ProduceResponse struct {
	Offset uint64 `json:"offset"`
}
type ConsumeResponse struct {
	Value []byte `json:"value"`
}

func (s *httpServer) handleProduce(w http.ResponseWriter, r *http.Request) {
	var body ProduceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	offset, err := s.partition.Append(body.Value)
	if err != nil {
		s.logger.Error("append failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// Append returns the offset the next write will get; the record we
	// just wrote landed one below that.
	res := ProduceResponse{Offset: offset - 1}
	if err := json.NewEncoder(w).Encode(res); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (s *httpServer) handleConsume(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	offset, err := strconv.ParseUint(vars["offset"], 10, 64)
	if err != nil {
		http.Error(w, "offset should be a positive integer", http.StatusUnprocessableEntity)
		return
	}

	value, err := s.partition.Read(offset)
	var outOfRange log.ErrOffsetOutOfRange
	if errors.As(err, &outOfRange) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("read failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	res := ConsumeResponse{Value: value}
	if err := json.NewEncoder(w).Encode(res); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
