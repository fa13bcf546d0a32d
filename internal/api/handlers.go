package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Veraticus/regulaite/internal/common"
	"github.com/Veraticus/regulaite/internal/engine"
	"github.com/Veraticus/regulaite/internal/explain"
	"github.com/Veraticus/regulaite/internal/model"
	"github.com/Veraticus/regulaite/internal/rules"
)

const maxBodyBytes = 64 << 10

// Handlers serves the HTTP endpoints.
type Handlers struct {
	runner Runner
	rules  *rules.Table
	logger *slog.Logger
}

// AnalyzeRequest is the transaction form submitted by the web client.
type AnalyzeRequest struct {
	Amount       *float64 `json:"amount"`
	Description  string   `json:"description"`
	Counterparty string   `json:"counterparty,omitempty"`
	TypeHint     string   `json:"typeHint,omitempty"`
	Frequency    string   `json:"frequency,omitempty"`
	VendorType   string   `json:"vendorType,omitempty"`
}

// Validate checks the request shape.
func (r AnalyzeRequest) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return common.ErrEmptyDescription
	}
	if r.Amount == nil {
		return fmt.Errorf("%w: amount is required", common.ErrInvalidInput)
	}
	if *r.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", common.ErrInvalidInput)
	}
	return nil
}

// Text composes the single text the pipeline classifies. Hints come before
// the amount so the "amount" keyword stays attached to the number.
func (r AnalyzeRequest) Text() string {
	parts := []string{strings.TrimSpace(r.Description)}
	for _, hint := range []string{r.TypeHint, r.VendorType, r.Frequency} {
		if hint = strings.TrimSpace(hint); hint != "" {
			parts = append(parts, hint)
		}
	}
	if c := strings.TrimSpace(r.Counterparty); c != "" {
		parts = append(parts, "to "+c)
	}
	parts = append(parts, "amount "+strconv.FormatFloat(*r.Amount, 'f', -1, 64))
	return strings.Join(parts, " ")
}

// AnalyzeResponse is the web client's view of a result.
type AnalyzeResponse struct {
	ID                string        `json:"id"`
	Status            string        `json:"status"`
	Issue             string        `json:"issue"`
	LawApplied        string        `json:"lawApplied"`
	Action            string        `json:"action"`
	RiskLevel         string        `json:"riskLevel"`
	Explanation       string        `json:"explanation"`
	Actions           []string      `json:"actions"`
	Raw               engine.Result `json:"raw"`
	WithholdingAmount int64         `json:"withholdingAmount"`
	NetPayable        int64         `json:"netPayable"`
}

// NewAnalyzeResponse maps a pipeline result for the web client.
func NewAnalyzeResponse(res engine.Result, counterparty string) AnalyzeResponse {
	v := res.Compliance

	resp := AnalyzeResponse{
		ID:                res.ID,
		Status:            "compliant",
		RiskLevel:         "Low",
		Explanation:       res.Explanation,
		Raw:               res,
		WithholdingAmount: v.WithholdingAmount,
		NetPayable:        v.NetPayable,
	}
	if v.Status == model.StatusNonCompliant {
		resp.Status = "non-compliant"
		resp.RiskLevel = "High"
	}
	if len(v.Issues) > 0 {
		resp.Issue = v.Issues[0].Reason
	}

	switch {
	case v.Section() != "":
		resp.LawApplied = v.Section()
	case v.GSTRelevant:
		resp.LawApplied = "GST"
	}

	resp.Actions = explain.ParseActions(res.Explanation)
	if len(resp.Actions) == 0 {
		resp.Actions = explain.SuggestedActions(v, counterparty)
	}
	resp.Action = resp.Actions[0]

	return resp
}

// Analyze handles POST /api/transactions/analyze.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := h.runner.Run(r.Context(), req.Text())
	h.logger.Debug("analyzed transaction",
		"id", res.ID,
		"category", res.Transaction.Category,
		"status", res.Compliance.Status)
	WriteJSON(w, http.StatusOK, NewAnalyzeResponse(res, req.Counterparty))
}

// CheckRequest is a raw text check.
type CheckRequest struct {
	Text string `json:"text"`
}

// Check handles POST /api/check and returns the raw pipeline result.
func (h *Handlers) Check(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		WriteError(w, http.StatusBadRequest, common.ErrEmptyDescription.Error())
		return
	}

	WriteJSON(w, http.StatusOK, h.runner.Run(r.Context(), req.Text))
}

// RulesResponse lists the active rule table.
type RulesResponse struct {
	Source string      `json:"source"`
	Rules  []rules.Row `json:"rules"`
}

// ListRules handles GET /api/rules.
func (h *Handlers) ListRules(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, RulesResponse{Source: h.rules.Source(), Rules: h.rules.Entries()})
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty request body", common.ErrInvalidInput)
		}
		return fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}
	return nil
}
