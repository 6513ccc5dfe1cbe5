package models

// Actor is the identity on whose behalf a marketplace operation runs.
// The zero value is the anonymous actor.
type Actor struct {
	ID string
}

// Anonymous is the actor of requests that carry no identity.
var Anonymous = Actor{}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool { return a.ID != "" }

// Is reports whether the actor is the identity id.
func (a Actor) Is(id string) bool { return a.Authenticated() && a.ID == id }
