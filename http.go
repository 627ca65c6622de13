package corebank

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	hdrUserID         = "User-Id"
	hdrIdempotencyKey = "Idempotency-Key"
)

type balanceJSONResp struct {
	Success bool            `json:"success"`
	Balance decimal.Decimal `json:"balance"`
}

type errJSONResp struct {
	Success bool `json:"success"`
	Details any  `json:"details"`
}

func NewHTTPHandler(svc Service, metrics *Metrics, log *zerolog.Logger) http.Handler {
	hndlr := &httpHandler{
		Svc: svc,
		Log: log,
	}
	mux := chi.NewMux()
	mux.NotFound(HTTPNotFound)
	mux.Post("/accounts", hndlr.CreateAccount)
	mux.Post("/deposit", hndlr.Deposit)
	mux.Post("/withdraw", hndlr.Withdraw)
	mux.Post("/transfer", hndlr.Transfer)
	mux.Get("/balance", hndlr.Balance)
	mux.Get("/accounts/{acctNum:[0-9]+}/statement", hndlr.Statement)
	if metrics != nil {
		mux.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	return mux
}

type httpHandler struct {
	Svc Service
	Log *zerolog.Logger
}

// userID reads the authenticated caller identity set by the upstream auth
// collaborator.
func (h *httpHandler) userID(w http.ResponseWriter, r *http.Request, method string) (snowflake.ID, bool) {
	uid, err := snowflake.ParseString(r.Header.Get(hdrUserID))
	if err != nil {
		h.Log.Error().Str("method", method).Msg("missing/invalid user ID")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{hdrUserID: "missing or invalid"}})
		return 0, false
	}
	return uid, true
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, method string, log *zerolog.Logger, v any) bool {
	buf, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		log.Err(err).Str("method", method).Msg("error reading HTTP request")
		WriteHTTPError(w, ErrInternalServer)
		return false
	}
	if err = json.Unmarshal(buf, v); err != nil {
		log.Err(err).Str("method", method).Msg("error unmarshalling JSON")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"request body": "malformed JSON"}})
		return false
	}
	return true
}

func (h *httpHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r, "create_account")
	if !ok {
		return
	}
	var req OpenAccountReq
	if !decodeJSONBody(w, r, "create_account", h.Log, &req) {
		return
	}
	req.Owner = uid
	acct, err := h.Svc.CreateAccount(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (h *httpHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r, "deposit")
	if !ok {
		return
	}
	var req DepositReq
	if !decodeJSONBody(w, r, "deposit", h.Log, &req) {
		return
	}
	req.UserID = uid
	req.IdempotencyKey = r.Header.Get(hdrIdempotencyKey)
	resp, err := h.Svc.Deposit(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r, "withdraw")
	if !ok {
		return
	}
	var req WithdrawReq
	if !decodeJSONBody(w, r, "withdraw", h.Log, &req) {
		return
	}
	req.UserID = uid
	req.IdempotencyKey = r.Header.Get(hdrIdempotencyKey)
	resp, err := h.Svc.Withdraw(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r, "transfer")
	if !ok {
		return
	}
	var req TransferReq
	if !decodeJSONBody(w, r, "transfer", h.Log, &req) {
		return
	}
	req.UserID = uid
	req.IdempotencyKey = r.Header.Get(hdrIdempotencyKey)
	resp, err := h.Svc.Transfer(r.Context(), req)
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *httpHandler) Balance(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r, "balance")
	if !ok {
		return
	}
	bal, err := h.Svc.Balance(r.Context(), BalanceReq{UserID: uid})
	if err != nil {
		WriteHTTPError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceJSONResp{Success: true, Balance: *bal})
}

func (h *httpHandler) Statement(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.userID(w, r, "statement")
	if !ok {
		return
	}
	num, err := snowflake.ParseString(chi.URLParam(r, "acctNum"))
	if err != nil {
		h.Log.Err(err).Str("method", "statement").Msg("error parsing account number")
		WriteHTTPError(w, ErrBadRequest{Fields: map[string]string{"acctNum": "invalid format"}})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	if err = h.Svc.Statement(r.Context(), w, StatementReq{UserID: uid, Number: num.Int64()}); err != nil {
		w.Header().Del("Content-Type")
		WriteHTTPError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("response encoding failed")
	}
}

// WriteHTTPError maps the error taxonomy to the failure envelope:
// validation and business-rule rejections are 400, ownership violations 403,
// missing accounts 404, concurrent-update conflicts 409, everything else 500.
func WriteHTTPError(w http.ResponseWriter, err error) {
	var ne error
	defer func() {
		if ne != nil {
			log.Error().
				Err(ne).
				Msg("error response encoding failed")
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	errnf := &ErrNotFound{}
	errbr := &ErrBadRequest{}
	switch {
	case errors.As(err, errnf):
		w.WriteHeader(http.StatusNotFound)
		ne = json.NewEncoder(w).Encode(errJSONResp{Details: errnf})
	case errors.As(err, errbr):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(errJSONResp{Details: errbr})
	case errors.Is(err, ErrSameAccount),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInvalidPin):
		w.WriteHeader(http.StatusBadRequest)
		ne = json.NewEncoder(w).Encode(errJSONResp{Details: err.Error()})
	case errors.Is(err, ErrForbidden):
		w.WriteHeader(http.StatusForbidden)
		ne = json.NewEncoder(w).Encode(errJSONResp{Details: err.Error()})
	case errors.Is(err, ErrConflict):
		w.WriteHeader(http.StatusConflict)
		ne = json.NewEncoder(w).Encode(errJSONResp{Details: err.Error()})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		ne = json.NewEncoder(w).Encode(errJSONResp{Details: "server error"})
	}
}

func HTTPNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]string{
		"path": r.URL.Path,
	}
	json.NewEncoder(w).Encode(resp)
}
