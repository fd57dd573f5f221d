// Package access decides which operations an actor may perform on a file.
//
// Evaluate is a pure function: callers load the facts (owner, visibility,
// whether the actor holds a share grant) and re-evaluate on every request,
// since grants and visibility can change between calls.
package access

import (
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/vx6Fid/envelopr/internal/errs"
	"github.com/vx6Fid/envelopr/internal/model"
)

// Op is an operation performed on a file.
type Op int

const (
	View Op = iota
	Edit
	Delete
	Share
	Publish
)

func (o Op) String() string {
	switch o {
	case View:
		return "view"
	case Edit:
		return "edit"
	case Delete:
		return "delete"
	case Share:
		return "share"
	case Publish:
		return "publish"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Decision is the outcome of an evaluation.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

// Target holds the facts about a file relevant to one actor.
type Target struct {
	OwnerID uuid.UUID
	Public  bool
	Granted bool // actor holds a share grant on the file
}

// TargetOf builds a Target from a file and the actor's grant state.
func TargetOf(f *model.File, granted bool) Target {
	return Target{OwnerID: f.OwnerID, Public: f.IsPublic, Granted: granted}
}

// Evaluate applies the rules in order:
//  1. the owner may do anything;
//  2. a granted user may view and edit;
//  3. anyone, anonymous included, may view a public file;
//  4. everything else is denied.
func Evaluate(a model.Actor, t Target, op Op) Decision {
	if !a.IsAnonymous() && a.UserID == t.OwnerID {
		return Allow
	}
	if (op == View || op == Edit) && t.Granted && !a.IsAnonymous() {
		return Allow
	}
	if op == View && t.Public {
		return Allow
	}
	return Deny
}

// Check surfaces a decision as an error. An actor that may not even view the
// file gets ErrNotFound so that existence is never revealed; an actor that can
// view but not perform op gets ErrForbidden.
func Check(a model.Actor, t Target, op Op) error {
	if Evaluate(a, t, op) == Allow {
		return nil
	}
	if Evaluate(a, t, View) == Deny {
		return errs.ErrNotFound
	}
	return fmt.Errorf("%w: %s", errs.ErrForbidden, op)
}
