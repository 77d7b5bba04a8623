package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"examprep/internal/storage"
	"examprep/internal/testutils"
	"examprep/pkg/preptypes"
)

func newTestWorkspace(t *testing.T, replies ...testutils.ScriptedReply) (*Workspace, *testutils.ScriptedClient) {
	t.Helper()
	store := storage.NewMemoryStore()
	generator, client := newTestFrameworkService(replies...)
	auth := NewAuthService(store, AuthOptions{
		HashCost:     bcrypt.MinCost,
		GenerateCode: testutils.SequenceCodes("246810"),
	})
	return NewWorkspaceFrom(auth, NewHistoryService(store, 3), generator), client
}

func logInTestUser(t *testing.T, w *Workspace) {
	t.Helper()
	ctx := context.Background()
	code, err := w.Auth.SignUp(ctx, "aspirant@example.com", "pw")
	require.NoError(t, err)
	_, err = w.Auth.ConfirmSignUp(ctx, "aspirant@example.com", code)
	require.NoError(t, err)
}

func TestWorkspace_GenerateRequiresSession(t *testing.T) {
	w, client := newTestWorkspace(t)

	_, err := w.Generate(context.Background(), "Uniform Civil Code")
	requireKind(t, err, preptypes.ErrNotLoggedIn)
	assert.Equal(t, "Please log in to generate a framework.", err.Error())
	assert.Zero(t, client.CallCount())
}

func TestWorkspace_GenerateRecordsHistoryOnSuccessOnly(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkspace(t,
		testutils.ScriptedReply{Text: testutils.FrameworkReply(t, "Uniform Civil Code")},
		testutils.ScriptedReply{Text: "not json"},
		testutils.ScriptedReply{Text: testutils.FrameworkReply(t, "Federalism")},
	)
	logInTestUser(t, w)

	_, err := w.Generate(ctx, "Uniform Civil Code")
	require.NoError(t, err)
	_, err = w.Generate(ctx, "Broken Topic")
	requireKind(t, err, preptypes.ErrMalformedJSON)
	_, err = w.Generate(ctx, " Federalism ")
	require.NoError(t, err)

	history, err := w.CurrentHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Federalism", "Uniform Civil Code"}, history)

	require.NoError(t, w.ClearCurrentHistory(ctx))
	history, err = w.CurrentHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestWorkspace_HistoryFollowsAccount(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkspace(t, testutils.ScriptedReply{Text: testutils.FrameworkReply(t, "A")})
	logInTestUser(t, w)

	_, err := w.Generate(ctx, "A")
	require.NoError(t, err)

	w.Auth.LogOut(ctx)
	_, err = w.CurrentHistory(ctx)
	requireKind(t, err, preptypes.ErrNotLoggedIn)

	_, err = w.Auth.LogIn(ctx, "aspirant@example.com", "pw")
	require.NoError(t, err)
	history, err := w.CurrentHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, history)
}

func TestWorkspace_AskFollowUp(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorkspace(t, testutils.ScriptedReply{Text: "Answer."})

	_, err := w.AskFollowUp(ctx, "Topic", "Question?")
	requireKind(t, err, preptypes.ErrNotLoggedIn)

	logInTestUser(t, w)
	result, err := w.AskFollowUp(ctx, "Topic", "Question?")
	require.NoError(t, err)
	assert.Equal(t, "Answer.", result.Answer)
}

func TestNewWorkspace_UsesConfig(t *testing.T) {
	cfg := testAppConfig()
	cfg.HistoryLimit = 2
	generator, _ := newTestFrameworkService()

	w := NewWorkspace(storage.NewMemoryStore(), generator, cfg)
	require.NotNil(t, w.Auth)
	assert.Equal(t, 2, w.History.limit)
	assert.Equal(t, DefaultCodeTTL, w.Auth.codeTTL)
}
