package docroute_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/bjaus/docroute"
)

// recoverErr runs fn and returns the error it panicked with, or nil.
func recoverErr(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		if rec := recover(); rec != nil {
			e, ok := rec.(error)
			if !ok {
				t.Fatalf("panic value is %T, not error: %v", rec, rec)
			}
			err = e
		}
	}()
	fn()
	return nil
}

type Widget struct {
	ID   string `json:"id" required:"true"`
	Name string `json:"name"`
}

type ListWidgetsResp struct {
	Items []Widget `json:"items"`
}

type GetWidgetReq struct {
	ID string `path:"id"`
}

type CreateWidgetReq struct {
	Body struct {
		Name string `json:"name" required:"true"`
	}
}

func listWidgets(_ context.Context, _ *docroute.Void) (*ListWidgetsResp, error) {
	return &ListWidgetsResp{Items: []Widget{{ID: "1", Name: "one"}}}, nil
}

func getWidget(_ context.Context, req *GetWidgetReq) (*Widget, error) {
	if req.ID == "missing" {
		return nil, docroute.Error(http.StatusNotFound, "widget not found")
	}
	return &Widget{ID: req.ID, Name: "w-" + req.ID}, nil
}

func createWidget(_ context.Context, req *CreateWidgetReq) (*Widget, error) {
	return &Widget{ID: "new", Name: req.Body.Name}, nil
}

// textEndpoint returns a raw endpoint that writes body with status 200.
func textEndpoint(body string, opts ...docroute.OperationOption) docroute.Endpoint {
	return docroute.Raw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}), opts...)
}
