package apitest_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/docroute"
	"github.com/bjaus/docroute/apitest"
)

type Note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type NoteReq struct {
	ID string `path:"id"`
}

type NewNote struct {
	Text string `json:"text"`
}

func newClient(t *testing.T) *apitest.Client {
	t.Helper()

	get := docroute.Handle(func(_ context.Context, req *NoteReq) (*Note, error) {
		if req.ID != "1" {
			return nil, docroute.Error(http.StatusNotFound, "no such note")
		}
		return &Note{ID: "1", Text: "hello"}, nil
	}, docroute.WithSummary("Get note"))
	create := docroute.Handle(func(_ context.Context, req *NewNote) (*Note, error) {
		return &Note{ID: "2", Text: req.Text}, nil
	}, docroute.WithStatus(http.StatusCreated))
	remove := docroute.Handle(func(_ context.Context, _ *NoteReq) (*docroute.Void, error) {
		return nil, nil
	})

	svc := docroute.New().
		Route("/notes", docroute.Post(create)).
		Route("/notes/{id}", docroute.Get(get).Delete(remove)).
		Finalize(docroute.Info{Title: "Notes", Version: "0.1.0"})

	return apitest.NewClient(t, svc)
}

func TestClient(t *testing.T) {
	t.Parallel()

	c := newClient(t)

	got := apitest.Get[Note](t, c, "/notes/1")
	require.Equal(t, http.StatusOK, got.Status)
	require.NotNil(t, got.Body)
	assert.Equal(t, "hello", got.Body.Text)

	missing := apitest.Get[Note](t, c, "/notes/9")
	assert.Equal(t, http.StatusNotFound, missing.Status)
	assert.Nil(t, missing.Body)
	require.NotNil(t, missing.Problem)
	assert.Equal(t, "no such note", missing.Problem.Detail)

	created := apitest.Post[NewNote, Note](t, c, "/notes", &NewNote{Text: "new"})
	assert.Equal(t, http.StatusCreated, created.Status)
	require.NotNil(t, created.Body)
	assert.Equal(t, "new", created.Body.Text)

	deleted := apitest.Delete[docroute.Void](t, c, "/notes/1")
	assert.Equal(t, http.StatusNoContent, deleted.Status)
	assert.Nil(t, deleted.Body)
}

func TestOperation(t *testing.T) {
	t.Parallel()

	c := newClient(t)
	op := apitest.Operation(t, c, http.MethodGet, "/notes/{id}")
	assert.Equal(t, "Get note", op.Summary)
	require.Len(t, op.Parameters, 1)
	assert.Equal(t, "id", op.Parameters[0].Name)
}
