package auth

import "strings"

// RouteClass is the access tier of a page path.
type RouteClass string

const (
	RoutePublic        RouteClass = "public"
	RouteAuthenticated RouteClass = "authenticated"
	RouteAdmin         RouteClass = "admin"
)

// RouteTable is the static mapping of page paths to access tiers.
type RouteTable struct {
	PublicPaths []string
	AdminPrefix string
	HomePath    string
	LoginPath   string
}

// DefaultRouteTable returns the standard route table.
func DefaultRouteTable() RouteTable {
	return RouteTable{
		PublicPaths: []string{"/login", "/signup"},
		AdminPrefix: "/admin",
		HomePath:    "/",
		LoginPath:   "/login",
	}
}

// IsPublic reports whether path is one of the public paths (exact match).
func (t RouteTable) IsPublic(path string) bool {
	for _, p := range t.PublicPaths {
		if p == path {
			return true
		}
	}
	return false
}

// IsAdmin reports whether path is the admin prefix or lies beneath it.
func (t RouteTable) IsAdmin(path string) bool {
	prefix := strings.TrimRight(t.AdminPrefix, "/")
	if prefix == "" {
		return false
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Classify returns the access tier of path.
func (t RouteTable) Classify(path string) RouteClass {
	switch {
	case t.IsPublic(path):
		return RoutePublic
	case t.IsAdmin(path):
		return RouteAdmin
	default:
		return RouteAuthenticated
	}
}

func (t RouteTable) home() string {
	if t.HomePath == "" {
		return "/"
	}
	return t.HomePath
}

func (t RouteTable) login() string {
	if t.LoginPath == "" {
		return "/login"
	}
	return t.LoginPath
}

// GuardAction is what the access guard does with a page request.
type GuardAction int

const (
	GuardProceed GuardAction = iota
	GuardRedirect
)

// GuardReason names the rule that produced a decision.
type GuardReason string

const (
	ReasonAlreadySignedIn GuardReason = "already_signed_in"
	ReasonLoginRequired   GuardReason = "login_required"
	ReasonAdminRequired   GuardReason = "admin_required"
	ReasonAllowed         GuardReason = "allowed"
)

// GuardDecision is the routing outcome for one page request.
type GuardDecision struct {
	Action   GuardAction
	Location string
	Reason   GuardReason
	Class    RouteClass
}

// Decide applies the routing rules in order:
//  1. public path with an identity redirects home,
//  2. non-public path without an identity redirects to login,
//  3. admin path with a non-admin identity redirects home,
//  4. anything else proceeds.
//
// The order keeps anonymous admin requests on rule 2 and prevents redirect loops.
func (t RouteTable) Decide(path string, identity *Claims) GuardDecision {
	class := t.Classify(path)
	public := class == RoutePublic

	switch {
	case public && identity != nil:
		return GuardDecision{Action: GuardRedirect, Location: t.home(), Reason: ReasonAlreadySignedIn, Class: class}
	case !public && identity == nil:
		return GuardDecision{Action: GuardRedirect, Location: t.login(), Reason: ReasonLoginRequired, Class: class}
	case class == RouteAdmin && !identity.IsAdmin():
		return GuardDecision{Action: GuardRedirect, Location: t.home(), Reason: ReasonAdminRequired, Class: class}
	default:
		return GuardDecision{Action: GuardProceed, Reason: ReasonAllowed, Class: class}
	}
}
