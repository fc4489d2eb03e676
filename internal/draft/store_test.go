package draft

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hospitalops/cftflow/internal/domain/wizard"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "drafts.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadWithoutDraft(t *testing.T) {
	store := openTestStore(t)
	assert.Nil(t, store.Load())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)

	state := wizard.NewState()
	state.Identification.Phone = "912345678"
	state.SetPatientLinkage(wizard.LinkageYes)
	state.SetPatientNumber("123456")
	state.SetObjective(wizard.ObjectiveNewTherapy)
	state.Classification = wizard.ClassificationOffLabel
	state.Clinical.Weight = "72,5"

	store.Save(state)

	got := store.Load()
	require.NotNil(t, got)
	assert.Equal(t, state.Identification.Phone, got.Identification.Phone)
	assert.Equal(t, state.Patient.Number, got.Patient.Number)
	assert.True(t, got.Patient.Validated)
	assert.Equal(t, wizard.ClassificationOffLabel, got.Classification)
	assert.Equal(t, "72,5", got.Clinical.Weight)
}

func TestSaveOverwritesPrevious(t *testing.T) {
	store := openTestStore(t)

	first := wizard.NewState()
	first.Identification.Phone = "911111111"
	store.Save(first)

	second := wizard.NewState()
	second.Identification.Phone = "922222222"
	store.Save(second)

	got := store.Load()
	require.NotNil(t, got)
	assert.Equal(t, "922222222", got.Identification.Phone)
}

func TestCorruptPayloadDegradesToMiss(t *testing.T) {
	store := openTestStore(t)
	store.Save(wizard.NewState())

	_, err := store.db.Exec(
		`UPDATE drafts SET payload = ? WHERE key = ?`,
		[]byte("{not json"), draftKey,
	)
	require.NoError(t, err)

	assert.Nil(t, store.Load())
}

func TestClear(t *testing.T) {
	store := openTestStore(t)
	store.Save(wizard.NewState())
	require.NotNil(t, store.Load())

	store.Clear()
	assert.Nil(t, store.Load())
}

func TestClearWithoutDraftIsHarmless(t *testing.T) {
	store := openTestStore(t)
	store.Clear()
	assert.Nil(t, store.Load())
}
