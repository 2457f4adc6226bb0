package guard

import (
	"strings"

	"github.com/jrsteele09/go-db-admin/session"
)

// Page paths the guard redirects between.
const (
	HomePath   = "/"
	LoginPath  = "/auth/login"
	SetupPath  = "/auth/2fa-setup"
	VerifyPath = "/auth/2fa-verify"
	LogoutPath = "/auth/logout"
)

// PathClass groups request paths by how the guard treats them.
type PathClass int

const (
	ClassProtected PathClass = iota
	ClassLogin
	ClassSetup
	ClassVerify
	ClassBypass
)

func (c PathClass) String() string {
	switch c {
	case ClassLogin:
		return "login"
	case ClassSetup:
		return "setup"
	case ClassVerify:
		return "verify"
	case ClassBypass:
		return "bypass"
	default:
		return "protected"
	}
}

var bypassPrefixes = []string{"/api/", "/static/", "/assets/"}

var bypassPaths = map[string]bool{
	"/favicon.ico": true,
	"/robots.txt":  true,
	LogoutPath:     true,
}

// Classify maps a request path onto its PathClass.
func Classify(path string) PathClass {
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	switch path {
	case LoginPath:
		return ClassLogin
	case SetupPath:
		return ClassSetup
	case VerifyPath:
		return ClassVerify
	}
	if bypassPaths[path] {
		return ClassBypass
	}
	for _, p := range bypassPrefixes {
		if strings.HasPrefix(path+"/", p) {
			return ClassBypass
		}
	}
	return ClassProtected
}

// Input is everything a routing decision depends on.
type Input struct {
	Path          string
	Flags         *session.Flags // nil when there is no valid session
	HasTempMarker bool           // the temp-2fa-secret cookie is present
}

// Decision is the outcome of Decide. Rule names the table row that matched.
type Decision struct {
	Allow        bool
	Location     string
	ClearCookies bool
	Rule         string
}

// Rule names.
const (
	RuleBypass              = "bypass"
	RuleNoSession           = "no-session"
	RuleTwoFactorDisabled   = "2fa-disabled"
	RuleAlreadyComplete     = "complete"
	RuleSetupReenroll       = "setup-reenroll"
	RuleEnrolling           = "enrolling"
	RuleMissingSecret       = "missing-secret"
	RuleUnverified          = "unverified"
	RuleNeedsVerification   = "needs-verification"
	RuleDefaultVerify       = "default-verify"
	RuleCorruptedEnrollment = "corrupted-enrollment"
	RuleSetupRequired       = "setup-required"
	RuleAllow               = "allow"
)

// Decide applies the routing table to in. A redirect to the page being
// requested is reported as an allow.
func Decide(in Input) Decision {
	class := Classify(in.Path)
	var d Decision
	switch class {
	case ClassBypass:
		return allow(RuleBypass)
	case ClassLogin, ClassSetup, ClassVerify:
		d = authPageDecision(class, in)
	default:
		d = protectedDecision(in.Flags)
	}
	if !d.Allow && Classify(d.Location) == class && class != ClassProtected {
		return allow(d.Rule)
	}
	return d
}

func authPageDecision(class PathClass, in Input) Decision {
	f := in.Flags
	if f == nil {
		return redirect(LoginPath, RuleNoSession)
	}
	if !f.Is2FAEnabled {
		return redirect(HomePath, RuleTwoFactorDisabled)
	}
	if f.HasSetup2FA && f.Is2FAVerified && !f.NeedsVerification {
		return redirect(HomePath, RuleAlreadyComplete)
	}
	if class == ClassSetup && f.HasSetup2FA && !f.Is2FAVerified && !in.HasTempMarker && !f.TempSecret2FAHasValue {
		return allow(RuleSetupReenroll)
	}
	if class == ClassSetup && !f.HasSetup2FA {
		return allow(RuleEnrolling)
	}
	if class == ClassVerify && f.HasSetup2FA && !f.Secret2FAHasValue && !f.TempSecret2FAHasValue {
		return redirect(SetupPath, RuleMissingSecret)
	}
	if f.HasSetup2FA && !f.Is2FAVerified {
		return redirect(VerifyPath, RuleUnverified)
	}
	if f.NeedsVerification {
		return redirect(VerifyPath, RuleNeedsVerification)
	}
	return redirect(VerifyPath, RuleDefaultVerify)
}

func protectedDecision(f *session.Flags) Decision {
	if f == nil {
		return redirect(LoginPath, RuleNoSession)
	}
	if f.Is2FAEnabled && f.HasSetup2FA && !f.Secret2FAHasValue && !f.TempSecret2FAHasValue {
		d := redirect(LoginPath, RuleCorruptedEnrollment)
		d.ClearCookies = true
		return d
	}
	if f.Is2FAEnabled && f.HasSetup2FA && !f.Is2FAVerified {
		return redirect(VerifyPath, RuleUnverified)
	}
	if f.Is2FAEnabled && !f.HasSetup2FA {
		return redirect(SetupPath, RuleSetupRequired)
	}
	return allow(RuleAllow)
}

func allow(rule string) Decision {
	return Decision{Allow: true, Rule: rule}
}

func redirect(location, rule string) Decision {
	return Decision{Location: location, Rule: rule}
}
