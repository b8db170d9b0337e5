package services

import (
	"github.com/curaious/devboard/internal/adapters"
	"github.com/curaious/devboard/internal/authz"
	"github.com/curaious/devboard/internal/config"
	"github.com/curaious/devboard/internal/db"
	"github.com/curaious/devboard/internal/services/client"
	"github.com/curaious/devboard/internal/services/project"
	"github.com/curaious/devboard/internal/services/team"
	"github.com/curaious/devboard/internal/services/user"
	"github.com/curaious/devboard/internal/services/workitem"
)

type UserStore interface {
	user.Repository
	adapters.UserLookup
}

type TeamStore interface {
	team.TeamRepository
	adapters.TeamLookup
}

type MembershipStore interface {
	team.MembershipRepository
	user.TeamDirectory
}

type ProjectStore interface {
	project.Repository
	adapters.ProjectLookup
}

// Stores is the persistence layer every service is built on.
type Stores struct {
	Users       UserStore
	Teams       TeamStore
	Members     MembershipStore
	Invitations team.InvitationRepository
	Projects    ProjectStore
	Tasks       workitem.Repository
	Bugs        workitem.Repository
	Clients     client.Repository
}

// PostgresStores builds the sqlx backed stores.
func PostgresStores(conn *db.DB) Stores {
	return Stores{
		Users:       user.NewUserRepo(conn),
		Teams:       team.NewTeamRepo(conn),
		Members:     team.NewMembershipRepo(conn),
		Invitations: team.NewInvitationRepo(conn),
		Projects:    project.NewProjectRepo(conn),
		Tasks:       workitem.NewRepo(conn, workitem.KindTask),
		Bugs:        workitem.NewRepo(conn, workitem.KindBug),
		Clients:     client.NewClientRepo(conn),
	}
}

type Services struct {
	User    *user.UserService
	Team    *team.TeamService
	Project *project.ProjectService
	Task    *workitem.Service
	Bug     *workitem.Service
	Client  *client.ClientService
}

func NewServices(conf *config.Config, stores Stores) *Services {
	resolver := authz.NewResolver(adapters.NewChainStore(stores.Teams, stores.Projects, stores.Members))

	return &Services{
		User:    user.NewUserService(stores.Users, stores.Members, conf.RESET_TOKEN_TTL),
		Team:    team.NewTeamService(stores.Teams, stores.Members, stores.Invitations, adapters.NewUserDirectory(stores.Users), resolver),
		Project: project.NewProjectService(stores.Projects, resolver),
		Task:    workitem.NewService(workitem.KindTask, stores.Tasks, resolver),
		Bug:     workitem.NewService(workitem.KindBug, stores.Bugs, resolver),
		Client:  client.NewClientService(stores.Clients, resolver),
	}
}
