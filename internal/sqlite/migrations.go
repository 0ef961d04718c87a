package sqlite

func (s Storage) RunMigrations() error {
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id VARCHAR NOT NULL PRIMARY KEY,
		auth TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner VARCHAR NOT NULL,
		action VARCHAR NOT NULL,
		payload TEXT NOT NULL DEFAULT "",
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}
