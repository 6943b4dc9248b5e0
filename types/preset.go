package types

// PresetRule is a rule checked before stored policies. A rule returning
// true authorizes the request outright; returning false defers to the
// rest of the chain.
type PresetRule func(m MembershipReader, sub Subject, obj Object, act Action) bool

// SiteAdministrators grants every action on every object to the site
// admin group and its members.
func SiteAdministrators(admins Group) PresetRule {
	return func(m MembershipReader, sub Subject, obj Object, act Action) bool {
		if sub == Subject(admins) {
			return true
		}
		if m == nil {
			return false
		}
		in, err := m.IsMember(sub, admins)
		if err != nil {
			return false
		}
		return in
	}
}
