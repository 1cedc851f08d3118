package store

import "fmt"

// ListProjects summarizes the projects that still have pending work.
func (s *Store) ListProjects() ([]ProjectSummary, error) {
	rows, err := s.db.Query(
		`SELECT project, COUNT(*) FROM tasks
		WHERE project != '' AND status = 'pending'
		GROUP BY project ORDER BY project`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []ProjectSummary
	for rows.Next() {
		var p ProjectSummary
		if err := rows.Scan(&p.Name, &p.Pending); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
