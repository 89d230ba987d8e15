package maintenance

import (
	"github.com/bwmarrin/discordgo"
	"github.com/small-frappuccino/rolemenu/pkg/errutil"
	"github.com/small-frappuccino/rolemenu/pkg/log"
)

const memberPageSize = 1000

// MemberDirectory is the guild surface the sweeper needs: full member
// enumeration and role revocation.
type MemberDirectory interface {
	Members(guildID string) ([]*discordgo.Member, error)
	RevokeRole(guildID, userID, roleID string) error
}

// SessionDirectory adapts a discordgo session to MemberDirectory, paginating
// through the member list.
type SessionDirectory struct {
	s *discordgo.Session
}

func NewSessionDirectory(s *discordgo.Session) *SessionDirectory {
	return &SessionDirectory{s: s}
}

func (d *SessionDirectory) Members(guildID string) ([]*discordgo.Member, error) {
	var all []*discordgo.Member
	after := ""
	for {
		page, err := d.s.GuildMembers(guildID, after, memberPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < memberPageSize {
			return all, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (d *SessionDirectory) RevokeRole(guildID, userID, roleID string) error {
	return d.s.GuildMemberRoleRemove(guildID, userID, roleID)
}

// Sweeper bulk-removes one role from every member that holds it alongside a
// base role. Moderators use it to clear a temporary role from a cohort.
type Sweeper struct {
	dir MemberDirectory
}

func NewSweeper(dir MemberDirectory) *Sweeper {
	return &Sweeper{dir: dir}
}

// Preview lists the member IDs that hold both the base and the target role.
// Nothing is mutated.
func (s *Sweeper) Preview(guildID, baseRoleID, removeRoleID string) ([]string, error) {
	members, err := s.dir.Members(guildID)
	if err != nil {
		return nil, errutil.Unreachablef(err, "list members of guild %s", guildID)
	}

	var hit []string
	for _, m := range members {
		if m.User == nil {
			continue
		}
		if holdsRole(m, baseRoleID) && holdsRole(m, removeRoleID) {
			hit = append(hit, m.User.ID)
		}
	}
	return hit, nil
}

// Execute removes the target role from every member Preview would list.
// Best-effort: individual failures are recorded and the sweep continues.
func (s *Sweeper) Execute(guildID, baseRoleID, removeRoleID string) (*errutil.ApplyReport, error) {
	targets, err := s.Preview(guildID, baseRoleID, removeRoleID)
	if err != nil {
		return nil, err
	}

	report := &errutil.ApplyReport{}
	for _, userID := range targets {
		err := s.dir.RevokeRole(guildID, userID, removeRoleID)
		if err != nil {
			err = errutil.Unreachablef(err, "member %s", userID)
		}
		report.Record("revoke", userID, err)
	}

	log.ApplicationLogger().Info("role sweep complete",
		"guild", guildID, "role", removeRoleID,
		"targets", len(targets), "failed", len(report.Failed()))
	return report, nil
}

func holdsRole(m *discordgo.Member, roleID string) bool {
	for _, id := range m.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}
