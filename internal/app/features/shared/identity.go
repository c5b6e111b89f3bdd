package shared

import (
	"net/http"

	"github.com/dalemusser/minutehub/internal/app/system/auth"
	"github.com/dalemusser/minutehub/internal/app/system/faults"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActorID returns the signed-in user's ObjectID. Routes behind
// RequireSignedIn always have one; a malformed session id is treated as
// not signed in.
func ActorID(r *http.Request) (primitive.ObjectID, error) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, faults.New(faults.Permission, "sign-in required")
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID, faults.New(faults.Permission, "sign-in required")
	}
	return id, nil
}

// ParseID parses an ObjectID from a JSON body field.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, faults.New(faults.Validation, "malformed id")
	}
	return id, nil
}

// PathID parses the named chi URL parameter as an ObjectID.
func PathID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, faults.Wrap(faults.Validation, ErrBadID)
	}
	return id, nil
}
