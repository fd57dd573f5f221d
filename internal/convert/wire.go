// Package convert maps domain models to API wire messages and back.
package convert

import (
	"fmt"

	u "github.com/gofrs/uuid/v5"

	api "github.com/vx6Fid/envelopr/api/envelopr/v1"
	"github.com/vx6Fid/envelopr/internal/errs"
	"github.com/vx6Fid/envelopr/internal/model"
)

// --- identities ---

// ParseID parses a wire file id. Malformed ids are validation errors.
func ParseID(s string) (u.UUID, error) {
	id, err := u.FromString(s)
	if err != nil || id == u.Nil {
		return u.Nil, fmt.Errorf("%w: bad id", errs.ErrValidation)
	}
	return id, nil
}

// ToUser converts a domain user without credential material.
func ToUser(m model.User) api.User {
	return api.User{ID: m.ID.String(), Username: m.Username, CreatedAt: m.CreatedAt}
}

// ToUsers converts a user list; the result is never nil.
func ToUsers(ms []model.User) []api.User {
	out := make([]api.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, ToUser(m))
	}
	return out
}

// ToSession converts a domain session.
func ToSession(s model.Session) api.Session {
	return api.Session{Token: s.Token, ExpiresAt: s.ExpiresAt}
}

// ToAuthResponse bundles a session with its user.
func ToAuthResponse(s model.Session, m model.User) *api.AuthResponse {
	return &api.AuthResponse{Session: ToSession(s), User: ToUser(m)}
}

// --- files ---

// ToFile converts a domain file. grantees may be nil.
func ToFile(f *model.File, grantees []model.User) api.File {
	out := api.File{
		ID:        f.ID.String(),
		OwnerID:   f.OwnerID.String(),
		Name:      f.Name,
		Content:   f.Content,
		IsPublic:  f.IsPublic,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
	if len(grantees) > 0 {
		out.SharedWith = ToUsers(grantees)
	}
	return out
}

// ToFileMeta converts a file without its content.
func ToFileMeta(f *model.File) api.File {
	m := f.Meta()
	return ToFile(&m, nil)
}

// ToPublicFile converts a file for anonymous readers. The owner is left out.
func ToPublicFile(f *model.File) api.File {
	out := ToFile(f, nil)
	out.OwnerID = ""
	return out
}

// ToFileMetas converts a listing, dropping content.
func ToFileMetas(fs []model.File) []api.File {
	out := make([]api.File, 0, len(fs))
	for i := range fs {
		out = append(out, ToFileMeta(&fs[i]))
	}
	return out
}

// FromListRequest maps the wire ordering to a domain ListOrder.
func FromListRequest(r *api.ListFilesRequest) (model.ListOrder, error) {
	o := model.ListOrder{Desc: !r.Ascending}
	switch r.SortBy {
	case "", api.SortByCreated:
		o.By = model.SortByCreated
	case api.SortByName:
		o.By = model.SortByName
	default:
		return model.ListOrder{}, fmt.Errorf("%w: unknown sort key %q", errs.ErrValidation, r.SortBy)
	}
	return o, nil
}

// --- client side ---

// FromFile converts a wire file back to the domain model. Files read
// anonymously carry no owner and map to a nil OwnerID.
func FromFile(in api.File) (model.File, error) {
	id, err := u.FromString(in.ID)
	if err != nil {
		return model.File{}, fmt.Errorf("invalid id: %w", err)
	}
	var owner u.UUID
	if in.OwnerID != "" {
		if owner, err = u.FromString(in.OwnerID); err != nil {
			return model.File{}, fmt.Errorf("invalid owner id: %w", err)
		}
	}
	return model.File{
		ID:        id,
		OwnerID:   owner,
		Name:      in.Name,
		Content:   in.Content,
		IsPublic:  in.IsPublic,
		CreatedAt: in.CreatedAt,
		UpdatedAt: in.UpdatedAt,
	}, nil
}
