package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/service"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/types"
)

type Dependencies struct {
	Logger      *log.Logger
	Addr        string
	Coordinator *service.Coordinator
}

type Server struct {
	httpServer  *http.Server
	logger      *log.Logger
	mux         *http.ServeMux
	coordinator *service.Coordinator
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:      d.Logger,
		mux:         mux,
		coordinator: d.Coordinator,
	}

	mux.HandleFunc("POST /v1/visits", s.handleCreateVisit)
	mux.HandleFunc("GET /v1/visits/{id}/status", s.handleStatus)
	mux.HandleFunc("POST /v1/webhook/inbound", s.handleInbound)
	mux.HandleFunc("GET /v1/preapprovals/{phone}", s.handlePreApprovalLookup)
	mux.HandleFunc("POST /v1/checkout", s.handleCheckout)
	mux.HandleFunc("GET /v1/active-visits", s.handleActiveVisits)
	mux.HandleFunc("GET /v1/history", s.handleHistory)

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleCreateVisit(w http.ResponseWriter, r *http.Request) {
	var req types.CreateVisitRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	resp, err := s.coordinator.CreateRequest(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingVisitorName):
			writeError(w, http.StatusBadRequest, "missing_visitor_name", err.Error())
		case errors.Is(err, service.ErrMissingVisitorPhone):
			writeError(w, http.StatusBadRequest, "missing_visitor_phone", err.Error())
		case errors.Is(err, store.ErrDuplicateRequest):
			writeError(w, http.StatusConflict, "duplicate_request_id", err.Error())
		default:
			s.logger.Printf("create visit error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.coordinator.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Printf("status query error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, types.StatusResponse{Status: status})
}

// handleInbound is the webhook the messaging provider posts decision and
// pre-approval messages to, form-encoded.  It always answers 200 with an
// empty TwiML envelope: the channel is shared and noisy, and errors here
// are for our logs, not the provider's retry loop.
func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.Printf("inbound webhook: bad form: %v", err)
		writeTwiML(w)
		return
	}

	msg := types.InboundMessage{
		Body:          r.PostFormValue("Body"),
		ButtonPayload: r.PostFormValue("ButtonPayload"),
		From:          r.PostFormValue("From"),
	}

	if err := s.coordinator.HandleInbound(r.Context(), msg); err != nil {
		s.logger.Printf("inbound webhook error: %v", err)
	}

	writeTwiML(w)
}

func (s *Server) handlePreApprovalLookup(w http.ResponseWriter, r *http.Request) {
	resp, err := s.coordinator.PreApprovalLookup(r.Context(), r.PathValue("phone"))
	if err != nil {
		s.logger.Printf("preapproval lookup error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req types.CheckoutRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	resp, err := s.coordinator.Checkout(r.Context(), req.VisitorPhone)
	if err != nil {
		s.logger.Printf("checkout error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActiveVisits(w http.ResponseWriter, r *http.Request) {
	recs, err := s.coordinator.ListActive(r.Context())
	if err != nil {
		s.logger.Printf("active visits error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, activeVisitViews(recs))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	recs, err := s.coordinator.History(r.Context())
	if err != nil {
		s.logger.Printf("history error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, historyViews(recs))
}
