package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/hospitalops/cftflow/internal/catalog"
	"github.com/hospitalops/cftflow/internal/domain/request"
	"github.com/hospitalops/cftflow/internal/domain/wizard"
	"github.com/hospitalops/cftflow/internal/notify"
)

// DraftStore is the local persistence contract for the in-progress wizard
// state. Saves are best-effort; a load miss returns nil.
type DraftStore interface {
	Save(state *wizard.State)
	Load() *wizard.State
	Clear()
}

// SubmissionService drives a wizard state through full validation and into
// the ledger, clearing the draft and reporting the outcome through the
// notification sink. Validation failures block the submission and leave
// every store untouched.
type SubmissionService struct {
	requests *RequestService
	drafts   DraftStore
	catalog  *catalog.Catalog
	notifier notify.Sink
	log      *zap.Logger
}

func NewSubmissionService(
	requests *RequestService,
	drafts DraftStore,
	cat *catalog.Catalog,
	notifier notify.Sink,
	log *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		requests: requests,
		drafts:   drafts,
		catalog:  cat,
		notifier: notifier,
		log:      log,
	}
}

// SubmitResult pairs the created record with presentation hints for the
// submitting portal.
type SubmitResult struct {
	Request *request.Request `json:"pedido"`
	// RequiresEthicsApproval flags types that continue to the ethics
	// committee after a favorable verdict.
	RequiresEthicsApproval bool `json:"requerCES"`
}

func (s *SubmissionService) Submit(ctx context.Context, state *wizard.State) (*SubmitResult, error) {
	if err := wizard.ValidateAll(state); err != nil {
		var verr *wizard.ValidationError
		if errors.As(err, &verr) {
			s.notifier.Notify(verr.Title, verr.Reason, notify.SeverityError)
		}
		return nil, err
	}

	sub, err := wizard.ToRequestPayload(state)
	if err != nil {
		return nil, err
	}

	r, err := s.requests.Submit(ctx, sub)
	if err != nil {
		return nil, err
	}

	s.drafts.Clear()
	s.notifier.Notify(
		"Pedido submetido",
		"O seu pedido foi submetido com sucesso e aguarda triagem.",
		notify.SeverityInfo,
	)

	result := &SubmitResult{Request: r}
	if t, ok := s.catalog.RequestTypeByID(string(r.Type)); ok {
		result.RequiresEthicsApproval = t.RequiresEthicsApproval
	}
	return result, nil
}

// SaveDraft snapshots the in-progress state.
func (s *SubmissionService) SaveDraft(state *wizard.State) {
	s.drafts.Save(state)
}

// LoadDraft restores a saved state, or starts a fresh one when no draft is
// available.
func (s *SubmissionService) LoadDraft() (*wizard.State, bool) {
	if state := s.drafts.Load(); state != nil {
		return state, true
	}
	return wizard.NewState(), false
}

// DiscardDraft drops the saved state without submitting.
func (s *SubmissionService) DiscardDraft() {
	s.drafts.Clear()
}
