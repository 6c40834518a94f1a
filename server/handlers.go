package server

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/xrpl-commons/dapp-wallet/apperr"
	"github.com/xrpl-commons/dapp-wallet/payload"
	"go.uber.org/zap"
)

type refreshResp struct {
	// Started is false while the ledger is disconnected or no wallet is loaded
	Started bool `json:"started"`
}

type healthResp struct {
	Status          string `json:"status"`
	LedgerConnected bool   `json:"ledgerConnected"`
}

type errorResp struct {
	Error *payload.ErrorInfo `json:"error"`
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	s.sendResp(w, http.StatusOK, s.account.Account())
}

func (s *Server) refreshAccount(w http.ResponseWriter, r *http.Request) {
	s.sendResp(w, http.StatusAccepted, refreshResp{Started: s.account.RefreshAccount()})
}

func (s *Server) getNFTs(w http.ResponseWriter, r *http.Request) {
	s.sendResp(w, http.StatusOK, map[string]any{"account_nfts": s.account.NFTs()})
}

func (s *Server) refreshNFTs(w http.ResponseWriter, r *http.Request) {
	s.sendResp(w, http.StatusAccepted, refreshResp{Started: s.account.RefreshNFTs()})
}

// getOffers starts following the NFT on first use
func (s *Server) getOffers(w http.ResponseWriter, r *http.Request) {
	nftID := mux.Vars(r)["nftId"]
	if err := validateNFTID(nftID); err != nil {
		s.sendError(w, err)
		return
	}

	state := s.account.Offers(nftID)
	if !state.Followed {
		s.account.RefreshOffers(nftID)
	}
	s.sendResp(w, http.StatusOK, state)
}

func (s *Server) refreshOffers(w http.ResponseWriter, r *http.Request) {
	nftID := mux.Vars(r)["nftId"]
	if err := validateNFTID(nftID); err != nil {
		s.sendError(w, err)
		return
	}
	s.sendResp(w, http.StatusAccepted, refreshResp{Started: s.account.RefreshOffers(nftID)})
}

func (s *Server) getCatalogOffers(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		s.sendError(w, apperr.Newf(apperr.KindNotFound, "No catalog is configured."))
		return
	}

	query := r.URL.Query()
	pageSize := 0
	if v := query.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.sendError(w, apperr.Validation("pageSize", "must be a non-negative integer"))
			return
		}
		pageSize = n
	}

	page, err := s.catalog.Offers(r.Context(), pageSize, query.Get("cursor"))
	if err != nil {
		s.sendError(w, err)
		return
	}
	s.sendResp(w, http.StatusOK, page)
}

func (s *Server) getCatalogOffer(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		s.sendError(w, apperr.Newf(apperr.KindNotFound, "No catalog is configured."))
		return
	}

	offer, err := s.catalog.Offer(r.Context(), mux.Vars(r)["nftId"])
	if err != nil {
		s.sendError(w, err)
		return
	}
	s.sendResp(w, http.StatusOK, offer)
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResp{Status: "ok", LedgerConnected: s.health.IsConnected()}
	status := http.StatusOK
	if !resp.LedgerConnected {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	s.sendResp(w, status, resp)
}

func validateNFTID(nftID string) error {
	if _, err := hex.DecodeString(nftID); err != nil || len(nftID) != 64 {
		return apperr.Validation("nftId", "must be 64 hex characters")
	}
	return nil
}

func (s *Server) sendResp(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("writing response", zap.Error(err))
	}
}

// sendError renders err with the status of its kind
func (s *Server) sendError(w http.ResponseWriter, err error) {
	info := payload.NewErrorInfo(err)
	if info.Status >= http.StatusInternalServerError {
		s.logger.Warn("request failed", zap.String("error_kind", string(info.Kind)), zap.Error(err))
	}
	s.sendResp(w, info.Status, errorResp{Error: info})
}
