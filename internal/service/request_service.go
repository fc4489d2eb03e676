package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hospitalops/cftflow/internal/catalog"
	"github.com/hospitalops/cftflow/internal/domain/request"
)

// RequestService owns the committee ledger: it is the only writer, and every
// mutation appends exactly one history entry. Portal controllers hold an
// explicit reference to it; there is no ambient global store.
type RequestService struct {
	repo    request.Repository
	catalog *catalog.Catalog
	log     *zap.Logger
}

func NewRequestService(repo request.Repository, cat *catalog.Catalog, log *zap.Logger) *RequestService {
	return &RequestService{repo: repo, catalog: cat, log: log}
}

// Submit appends a new record to the ledger in the submitted state. The code
// is drawn from the per-year sequence counter, never from the ledger size.
func (s *RequestService) Submit(ctx context.Context, sub *request.Submission) (*request.Request, error) {
	if !sub.Type.IsValid() {
		return nil, request.ErrInvalidRequestType
	}

	now := time.Now()
	seq, err := s.repo.NextSequence(ctx, now.Year())
	if err != nil {
		return nil, fmt.Errorf("allocating request code: %w", err)
	}

	r := &request.Request{
		ID:              uuid.New(),
		Code:            request.FormatCode(now.Year(), seq),
		Type:            sub.Type,
		Objective:       sub.Objective,
		PriorRequestID:  sub.PriorRequestID,
		Status:          request.StatusSubmitted,
		SubmittedAt:     now,
		LastUpdatedAt:   now,
		Submitter:       sub.Submitter,
		Clinical:        sub.Clinical,
		Reevaluation:    sub.Reevaluation,
		Appeal:          sub.Appeal,
		Formulary:       sub.Formulary,
		Protocol:        sub.Protocol,
		TreatmentMonths: sub.TreatmentMonths,
		History: []request.HistoryEntry{{
			At:     now,
			Status: request.StatusSubmitted,
			Note:   "Pedido submetido pelo serviço",
		}},
	}

	if err := s.repo.Insert(ctx, r); err != nil {
		s.log.Error("failed to append request to ledger", zap.Error(err))
		return nil, fmt.Errorf("inserting request: %w", err)
	}

	s.log.Info("request submitted",
		zap.String("code", r.Code),
		zap.String("tipo", string(r.Type)),
		zap.String("servico", r.Submitter.ServiceID),
	)
	return r, nil
}

func (s *RequestService) Get(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	return s.repo.GetByID(ctx, id)
}

// BeginTriage moves a freshly submitted request into pharmacy triage.
// Re-entry from any other state is rejected, not silently ignored.
func (s *RequestService) BeginTriage(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	return s.transition(ctx, id, request.StatusInTriage, "Triagem iniciada pela farmácia")
}

// RequestInfo parks a request under triage until the clinician supplies the
// missing information.
func (s *RequestService) RequestInfo(ctx context.Context, id uuid.UUID, note string) (*request.Request, error) {
	if note == "" {
		note = "Solicitada informação adicional ao médico"
	}
	return s.transition(ctx, id, request.StatusPendingInfo, note)
}

// ForwardToClinicalDirection hands a request under triage to the clinical
// direction for approval outside the committee circuit.
func (s *RequestService) ForwardToClinicalDirection(ctx context.Context, id uuid.UUID, note string) (*request.Request, error) {
	if note == "" {
		note = "Encaminhado para aprovação da Direção Clínica"
	}
	return s.transition(ctx, id, request.StatusForwardedDC, note)
}

// Schedule places a request on the agenda of a committee meeting. Valid from
// every pre-deliberation state, including the agenda itself so a deferred
// request can move to a future slot.
func (s *RequestService) Schedule(ctx context.Context, id uuid.UUID, meetingID string) (*request.Request, error) {
	meeting, ok := s.catalog.MeetingByID(meetingID)
	if !ok {
		return nil, request.ErrMeetingNotFound
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	note := fmt.Sprintf("Agendado para reunião CFT de %s", meeting.Date)
	if err := r.Transition(request.StatusScheduled, note); err != nil {
		return nil, err
	}
	r.MeetingID = meetingID

	if err := s.repo.Replace(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info("request scheduled", zap.String("code", r.Code), zap.String("reuniao", meetingID))
	return r, nil
}

// Deliberate records the committee verdict. A favorable verdict approves, an
// unfavorable one rejects, and a deferral keeps the request on the agenda
// while still appending a history entry and storing the rationale.
func (s *RequestService) Deliberate(ctx context.Context, id uuid.UUID, verdict request.Verdict, rationale string) (*request.Request, error) {
	if !verdict.IsValid() {
		return nil, request.ErrInvalidVerdict
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// A deferred verdict targets agenda-cft, which the schedule rule permits
	// from every pre-deliberation state. Deliberation itself is only defined
	// on the agenda, so the source state is checked explicitly.
	if r.Status != request.StatusScheduled {
		return nil, request.ErrInvalidStatusTransition
	}

	note := rationale
	if note == "" {
		note = fmt.Sprintf("Decisão CFT: %s", verdict)
	}
	if err := r.Transition(verdict.StatusAfter(), note); err != nil {
		return nil, err
	}
	r.Verdict = verdict
	r.Rationale = rationale

	if err := s.repo.Replace(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info("request deliberated",
		zap.String("code", r.Code),
		zap.String("decisao", string(verdict)),
		zap.String("estado", string(r.Status)),
	)
	return r, nil
}

// AttachImpact derives and stores the financial impact of a request from a
// catalog drug and the expected treatment duration, together with the
// pharmacy assessment. It does not affect the lifecycle state.
func (s *RequestService) AttachImpact(ctx context.Context, id uuid.UUID, drugID string, months int, assessment string) (*request.Request, error) {
	drug, ok := s.catalog.DrugByID(drugID)
	if !ok {
		return nil, ErrUnknownDrug
	}
	impact, err := ComputeImpact(drug.UnitPrice, months, time.Now())
	if err != nil {
		return nil, err
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Impact = &impact
	r.TreatmentMonths = months
	r.PharmacyAssessment = assessment

	if err := s.repo.Replace(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RequestService) transition(ctx context.Context, id uuid.UUID, next request.Status, note string) (*request.Request, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Transition(next, note); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info("request transitioned", zap.String("code", r.Code), zap.String("estado", string(next)))
	return r, nil
}

func (s *RequestService) List(ctx context.Context) ([]*request.Request, error) {
	return s.repo.List(ctx)
}

func (s *RequestService) ListByStatus(ctx context.Context, status request.Status) ([]*request.Request, error) {
	return s.repo.ListByStatus(ctx, status)
}

func (s *RequestService) ListByMeeting(ctx context.Context, meetingID string) ([]*request.Request, error) {
	return s.repo.ListByMeeting(ctx, meetingID)
}

// PriorRequestChoices lists the ledger entries a clinician may reference
// from step 2: approved therapies for a re-evaluation, rejected requests for
// an appeal.
func (s *RequestService) PriorRequestChoices(ctx context.Context, objective request.Objective) ([]*request.Request, error) {
	switch objective {
	case request.ObjectiveReevaluation:
		return s.repo.ListByStatus(ctx, request.StatusApproved)
	case request.ObjectiveAppeal:
		return s.repo.ListByStatus(ctx, request.StatusRejected)
	default:
		return nil, nil
	}
}

// Stats summarizes the ledger for the dashboard.
type Stats struct {
	Total                   int     `json:"total"`
	InTriage                int     `json:"emTriagem"`
	Scheduled               int     `json:"emAgenda"`
	Approved                int     `json:"aprovados"`
	ApprovalRate            float64 `json:"taxaAprovacao"`
	ApprovedFinancialImpact float64 `json:"impactoTotal"`
}

func (s *RequestService) Stats(ctx context.Context) (Stats, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	st.Total = len(all)
	var deliberated int
	for _, r := range all {
		switch r.Status {
		case request.StatusInTriage:
			st.InTriage++
		case request.StatusScheduled:
			st.Scheduled++
		case request.StatusApproved:
			st.Approved++
			deliberated++
			if r.Impact != nil {
				st.ApprovedFinancialImpact += r.Impact.TotalCost
			}
		case request.StatusRejected:
			deliberated++
		}
	}
	if deliberated > 0 {
		st.ApprovalRate = float64(st.Approved) / float64(deliberated) * 100
	}
	return st, nil
}
