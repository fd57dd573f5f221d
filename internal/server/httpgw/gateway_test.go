package httpgw

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	api "github.com/vx6Fid/envelopr/api/envelopr/v1"
	"github.com/vx6Fid/envelopr/internal/errs"
	"github.com/vx6Fid/envelopr/internal/model"
)

type fakeReader struct {
	files map[uuid.UUID]*model.File
	err   error
	panic bool
}

func (f *fakeReader) GetPublic(_ context.Context, id uuid.UUID) (*model.File, error) {
	if f.panic {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	file, ok := f.files[id]
	if !ok || !file.IsPublic {
		return nil, errs.ErrNotFound
	}
	return file, nil
}

func okPing(context.Context) error { return nil }

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetPublic(t *testing.T) {
	pub := &model.File{ID: uuid.Must(uuid.NewV4()), OwnerID: uuid.Must(uuid.NewV4()), Name: "readme", Content: "hi", IsPublic: true}
	priv := &model.File{ID: uuid.Must(uuid.NewV4()), OwnerID: pub.OwnerID, Name: "secret", Content: "x"}
	r := NewRouter(&fakeReader{files: map[uuid.UUID]*model.File{pub.ID: pub, priv.ID: priv}}, okPing, zaptest.NewLogger(t))

	rr := serve(t, r, "/public/"+pub.ID.String())
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotContains(t, rr.Body.String(), "owner_id")
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var got api.File
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.Equal(t, "hi", got.Content)
	require.Equal(t, pub.ID.String(), got.ID)
	require.Empty(t, got.OwnerID)

	hidden := serve(t, r, "/public/"+priv.ID.String())
	missing := serve(t, r, "/public/"+uuid.Must(uuid.NewV4()).String())
	require.Equal(t, http.StatusNotFound, hidden.Code)
	require.Equal(t, missing.Body.String(), hidden.Body.String())

	require.Equal(t, http.StatusBadRequest, serve(t, r, "/public/not-a-uuid").Code)
}

func TestGetPublic_Errors(t *testing.T) {
	log := zaptest.NewLogger(t)

	rr := serve(t, NewRouter(&fakeReader{err: errors.New("db down")}, okPing, log), "/public/"+uuid.Must(uuid.NewV4()).String())
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.NotContains(t, rr.Body.String(), "db down")

	rr = serve(t, NewRouter(&fakeReader{panic: true}, okPing, log), "/public/"+uuid.Must(uuid.NewV4()).String())
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHealthz(t *testing.T) {
	log := zaptest.NewLogger(t)

	require.Equal(t, http.StatusOK, serve(t, NewRouter(&fakeReader{}, okPing, log), "/healthz").Code)

	down := func(context.Context) error { return errors.New("no db") }
	require.Equal(t, http.StatusServiceUnavailable, serve(t, NewRouter(&fakeReader{}, down, log), "/healthz").Code)
}
