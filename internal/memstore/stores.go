package memstore

import "github.com/curaious/devboard/internal/services"

// Stores exposes st as the persistence layer for services.NewServices.
func (st *Store) Stores() services.Stores {
	return services.Stores{
		Users:       st.Users,
		Teams:       st.Teams,
		Members:     st.Members,
		Invitations: st.Invitations,
		Projects:    st.Projects,
		Tasks:       st.Tasks,
		Bugs:        st.Bugs,
		Clients:     st.Clients,
	}
}
