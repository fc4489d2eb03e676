package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hospitalops/cftflow/internal/catalog"
	"github.com/hospitalops/cftflow/internal/domain/request"
	"github.com/hospitalops/cftflow/internal/domain/wizard"
	"github.com/hospitalops/cftflow/internal/notify"
	"github.com/hospitalops/cftflow/internal/repository/memory"
)

// fakeDraftStore keeps the draft in memory and records calls.
type fakeDraftStore struct {
	state   *wizard.State
	cleared int
}

func (f *fakeDraftStore) Save(state *wizard.State) { f.state = state }
func (f *fakeDraftStore) Load() *wizard.State      { return f.state }
func (f *fakeDraftStore) Clear()                   { f.state = nil; f.cleared++ }

type recordingSink struct {
	titles []string
}

func (s *recordingSink) Notify(title, _ string, _ notify.Severity) {
	s.titles = append(s.titles, title)
}

func newSubmissionService(t *testing.T) (*SubmissionService, *fakeDraftStore, *recordingSink) {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)

	drafts := &fakeDraftStore{}
	sink := &recordingSink{}
	requests := NewRequestService(memory.NewRequestRepository(), cat, zap.NewNop())
	return NewSubmissionService(requests, drafts, cat, sink, zap.NewNop()), drafts, sink
}

func validOffLabelState() *wizard.State {
	s := wizard.NewState()
	s.Identification.Phone = "912345678"
	s.SetPatientLinkage(wizard.LinkageYes)
	s.SetPatientNumber("123456")
	s.SetObjective(wizard.ObjectiveNewTherapy)
	s.Classification = wizard.ClassificationOffLabel
	s.Clinical.Weight = "68"
	s.Clinical.ECOG = "0"
	s.Clinical.Indication = "Linfoma não-Hodgkin refratário"
	s.Clinical.Summary = "Refratário a duas linhas."
	s.Clinical.EvidencePDF = "bibliografia.pdf"
	s.Clinical.Drugs = []request.DrugLine{{ID: "1", DrugID: "rituximab", DrugName: "Rituximab", CostBorne: true}}
	return s
}

func TestSubmitCreatesRecordAndClearsDraft(t *testing.T) {
	svc, drafts, sink := newSubmissionService(t)
	state := validOffLabelState()
	drafts.Save(state)

	result, err := svc.Submit(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, request.TypeOffLabel, result.Request.Type)
	assert.Equal(t, request.StatusSubmitted, result.Request.Status)
	assert.True(t, result.RequiresEthicsApproval, "off-label continues to the ethics committee")

	assert.Equal(t, 1, drafts.cleared)
	assert.Nil(t, drafts.state)
	assert.Contains(t, sink.titles, "Pedido submetido")
}

func TestSubmitOnLabelNeedsNoEthicsApproval(t *testing.T) {
	svc, _, _ := newSubmissionService(t)
	state := validOffLabelState()
	state.Classification = wizard.ClassificationOnLabel

	result, err := svc.Submit(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, request.TypeOnLabel, result.Request.Type)
	assert.False(t, result.RequiresEthicsApproval)
}

func TestSubmitBlockedByValidation(t *testing.T) {
	svc, drafts, sink := newSubmissionService(t)
	state := validOffLabelState()
	state.Clinical.EvidencePDF = ""
	drafts.Save(state)

	_, err := svc.Submit(context.Background(), state)

	var verr *wizard.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "evidence missing", verr.Title)
	assert.Zero(t, drafts.cleared, "a blocked submission keeps the draft")
	assert.Equal(t, []string{"evidence missing"}, sink.titles)
}

func TestLoadDraftMissReturnsFreshState(t *testing.T) {
	svc, _, _ := newSubmissionService(t)

	state, restored := svc.LoadDraft()
	assert.False(t, restored)
	require.NotNil(t, state)
	assert.Equal(t, "Dr. António Silva", state.Identification.FullName)
}

func TestLoadDraftRestoresSavedState(t *testing.T) {
	svc, _, _ := newSubmissionService(t)

	saved := validOffLabelState()
	svc.SaveDraft(saved)

	state, restored := svc.LoadDraft()
	assert.True(t, restored)
	assert.Equal(t, wizard.ClassificationOffLabel, state.Classification)
}

func TestDiscardDraft(t *testing.T) {
	svc, drafts, _ := newSubmissionService(t)
	svc.SaveDraft(validOffLabelState())

	svc.DiscardDraft()
	assert.Nil(t, drafts.state)
}
