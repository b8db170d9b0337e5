package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

func init() {
	m.addMigration(&migration{
		version: "20261001090300",
		up:      mig_20261001090300_work_items_up,
		down:    mig_20261001090300_work_items_down,
	})
}

// Tasks and bugs share one shape.
func mig_20261001090300_work_items_up(tx *sqlx.Tx) error {
	for _, table := range []string{"tasks", "bugs"} {
		_, err := tx.Exec(fmt.Sprintf(`
            CREATE TABLE IF NOT EXISTS %[1]s (
                id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
                developer_id UUID NOT NULL REFERENCES users(id),
                name VARCHAR(255) NOT NULL,
                description TEXT NOT NULL DEFAULT '',
                expected_completion_date TIMESTAMP WITH TIME ZONE,
                priority VARCHAR(10) NOT NULL DEFAULT 'medium' CHECK (priority IN ('high', 'medium', 'low')),
                status VARCHAR(20) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'to-do', 'in-progress', 'completed')),
                created_by UUID NOT NULL REFERENCES users(id),
                created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
                updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
            );
            CREATE INDEX IF NOT EXISTS idx_%[1]s_project_id ON %[1]s(project_id);
            CREATE INDEX IF NOT EXISTS idx_%[1]s_developer_id ON %[1]s(developer_id);
        `, table))
		if err != nil {
			return err
		}
	}

	return nil
}

func mig_20261001090300_work_items_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        DROP TABLE IF EXISTS bugs;
        DROP TABLE IF EXISTS tasks;
    `)
	return err
}
