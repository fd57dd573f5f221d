package convert

import (
	"errors"
	"testing"
	"time"

	u "github.com/gofrs/uuid/v5"

	api "github.com/vx6Fid/envelopr/api/envelopr/v1"
	"github.com/vx6Fid/envelopr/internal/errs"
	"github.com/vx6Fid/envelopr/internal/model"
)

func mustUUID(t *testing.T, s string) u.UUID {
	t.Helper()
	id, err := u.FromString(s)
	if err != nil {
		t.Fatalf("bad uuid %q: %v", s, err)
	}
	return id
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := ParseID("6f1cbe8e-b2e7-4a3b-9f6e-2a2c0f2f9c11")
	if err != nil || id.String() != "6f1cbe8e-b2e7-4a3b-9f6e-2a2c0f2f9c11" {
		t.Fatalf("ParseID: %v %v", id, err)
	}
	for _, bad := range []string{"", "nope", u.Nil.String()} {
		if _, err := ParseID(bad); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("ParseID(%q): want validation error, got %v", bad, err)
		}
	}
}

func TestToFile_WithGrantees(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	f := &model.File{
		ID:        mustUUID(t, "6f1cbe8e-b2e7-4a3b-9f6e-2a2c0f2f9c11"),
		OwnerID:   mustUUID(t, "0b7a0c44-4f0e-4b76-8d0f-5f3c9b9c2a01"),
		Name:      "notes.txt",
		Content:   "hello",
		IsPublic:  true,
		CreatedAt: ts,
		UpdatedAt: ts.Add(time.Minute),
	}
	bob := model.User{ID: mustUUID(t, "9a7b2d0e-1c3f-4e5a-8b6c-7d8e9f0a1b2c"), Username: "bob", PwdHash: []byte{1}}

	got := ToFile(f, []model.User{bob})
	if got.ID != f.ID.String() || got.OwnerID != f.OwnerID.String() || got.Content != "hello" || !got.IsPublic {
		t.Fatalf("file mismatch: %+v", got)
	}
	if len(got.SharedWith) != 1 || got.SharedWith[0].Username != "bob" {
		t.Fatalf("shared_with mismatch: %+v", got.SharedWith)
	}
	if ToFile(f, nil).SharedWith != nil {
		t.Fatalf("no grantees must leave shared_with empty")
	}

	back, err := FromFile(got)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if back != *f {
		t.Fatalf("FromFile mismatch: %+v", back)
	}
	if _, err := FromFile(api.File{ID: "x"}); err == nil {
		t.Fatalf("want error on bad id")
	}
}

func TestToPublicFile_HidesOwner(t *testing.T) {
	t.Parallel()

	f := &model.File{ID: mustUUID(t, "6f1cbe8e-b2e7-4a3b-9f6e-2a2c0f2f9c11"), OwnerID: mustUUID(t, "0b7a0c44-4f0e-4b76-8d0f-5f3c9b9c2a01"), Name: "pub", Content: "hi", IsPublic: true}
	got := ToPublicFile(f)
	if got.OwnerID != "" || got.Content != "hi" || got.ID != f.ID.String() {
		t.Fatalf("public file: %+v", got)
	}
	back, err := FromFile(got)
	if err != nil {
		t.Fatalf("FromFile without owner: %v", err)
	}
	if back.OwnerID != u.Nil || back.ID != f.ID {
		t.Fatalf("FromFile mismatch: %+v", back)
	}
	if f.OwnerID == u.Nil {
		t.Fatalf("source file must keep its owner")
	}
}

func TestToFileMeta_DropsContentKeepsOwner(t *testing.T) {
	t.Parallel()

	f := &model.File{ID: mustUUID(t, "6f1cbe8e-b2e7-4a3b-9f6e-2a2c0f2f9c11"), OwnerID: mustUUID(t, "0b7a0c44-4f0e-4b76-8d0f-5f3c9b9c2a01"), Name: "n", Content: "body"}
	got := ToFileMeta(f)
	if got.Content != "" || got.OwnerID != f.OwnerID.String() || got.Name != "n" {
		t.Fatalf("meta: %+v", got)
	}
	if f.Content != "body" {
		t.Fatalf("source file must keep its content")
	}
}

func TestToFileMetas_DropsContent(t *testing.T) {
	t.Parallel()

	out := ToFileMetas([]model.File{{Name: "a", Content: "secret"}, {Name: "b", Content: "x"}})
	if len(out) != 2 || out[0].Content != "" || out[1].Content != "" || out[1].Name != "b" {
		t.Fatalf("metas: %+v", out)
	}
	if ToFileMetas(nil) == nil {
		t.Fatalf("empty listing must be non-nil")
	}
}

func TestFromListRequest(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   api.ListFilesRequest
		want model.ListOrder
	}{
		{api.ListFilesRequest{}, model.DefaultListOrder},
		{api.ListFilesRequest{SortBy: "name", Ascending: true}, model.ListOrder{By: model.SortByName}},
		{api.ListFilesRequest{SortBy: "created", Ascending: true}, model.ListOrder{By: model.SortByCreated}},
		{api.ListFilesRequest{SortBy: "name"}, model.ListOrder{By: model.SortByName, Desc: true}},
	}
	for _, tc := range cases {
		got, err := FromListRequest(&tc.in)
		if err != nil || got != tc.want {
			t.Fatalf("%+v: got %+v err=%v", tc.in, got, err)
		}
	}
	if _, err := FromListRequest(&api.ListFilesRequest{SortBy: "size"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want validation error on unknown key, got %v", err)
	}
}
