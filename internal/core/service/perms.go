package service

import (
	"strings"

	"fishbot/internal/core/domain"

	"github.com/spf13/viper"
)

// PermissionEvaluator decides whether a user identity satisfies a required
// permission level. The admin set comes from config; the first configured
// admin is the distinguished owner identity.
//
// REGISTERED and TRUSTED are deliberate stubs: there is no separate trusted
// list yet, and account existence is checked by individual handlers, not
// here. The full five-level ordering is kept so handlers can be written
// against it.
type PermissionEvaluator struct {
	admins []string
}

func NewPermissionEvaluator() *PermissionEvaluator {
	var admins []string
	for _, a := range viper.GetStringSlice("bot.admin_users") {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			admins = append(admins, a)
		}
	}

	return &PermissionEvaluator{admins: admins}
}

func (p *PermissionEvaluator) Check(username string, level domain.PermissionLevel) bool {
	username = strings.ToLower(username)

	switch level {
	case domain.Owner:
		// Only the first configured admin. No admins, no owner.
		return len(p.admins) > 0 && username == p.admins[0]
	case domain.Admin, domain.Trusted:
		return p.isAdmin(username)
	default:
		// REGISTERED and EVERYONE are always satisfied.
		return true
	}
}

// LevelOf returns the highest level the user qualifies for, for use in
// listing and filtering.
func (p *PermissionEvaluator) LevelOf(username string) domain.PermissionLevel {
	username = strings.ToLower(username)

	if len(p.admins) > 0 && username == p.admins[0] {
		return domain.Owner
	}
	if p.isAdmin(username) {
		return domain.Admin
	}

	return domain.Everyone
}

func (p *PermissionEvaluator) isAdmin(username string) bool {
	for _, a := range p.admins {
		if a == username {
			return true
		}
	}
	return false
}
