package migrations

import "github.com/jmoiron/sqlx"

func init() {
	m.addMigration(&migration{
		version: "20261001090100",
		up:      mig_20261001090100_teams_up,
		down:    mig_20261001090100_teams_down,
	})
}

func mig_20261001090100_teams_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS teams (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            manager_id UUID NOT NULL REFERENCES users(id),
            name VARCHAR(255) NOT NULL,
            designation VARCHAR(255) NOT NULL DEFAULT '',
            purpose TEXT NOT NULL DEFAULT '',
            status VARCHAR(20) NOT NULL DEFAULT 'Active' CHECK (status IN ('Active', 'Inactive')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            UNIQUE(manager_id, name)
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS team_invitations (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
            invited_by UUID NOT NULL REFERENCES users(id),
            invited_email VARCHAR(255) NOT NULL,
            status VARCHAR(20) NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Accepted', 'Rejected')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            response_date TIMESTAMP WITH TIME ZONE
        );
    `)
	if err != nil {
		return err
	}

	// At most one pending invitation per (team, email).
	_, err = tx.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_team_invitations_pending
        ON team_invitations(team_id, invited_email)
        WHERE status = 'Pending';
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE TABLE IF NOT EXISTS developer_teams (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            developer_id UUID NOT NULL REFERENCES users(id),
            team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
            role VARCHAR(20) NOT NULL DEFAULT 'Developer' CHECK (role IN ('Developer', 'Lead Developer')),
            joined_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            invitation_id UUID REFERENCES team_invitations(id) ON DELETE SET NULL,
            UNIQUE(developer_id, team_id)
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE INDEX IF NOT EXISTS idx_developer_teams_team_id ON developer_teams(team_id);
    `)
	return err
}

func mig_20261001090100_teams_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        DROP TABLE IF EXISTS developer_teams;
        DROP TABLE IF EXISTS team_invitations;
        DROP TABLE IF EXISTS teams;
    `)
	return err
}
