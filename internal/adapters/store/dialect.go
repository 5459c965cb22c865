package store

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// dialect holds the driver-specific SQL for the append-only reading log.
type dialect struct {
	driver   string
	schema   func(table, charset string) string
	insert   string // args: table
	recent   string // args: table
	boolArgs bool
}

var dialects = map[string]dialect{
	DriverMySQL: {
		driver: "mysql",
		schema: func(table, charset string) string {
			return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id       INT AUTO_INCREMENT PRIMARY KEY,
	ts       TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	rain_mm  INT,
	level    VARCHAR(10),
	servo    TINYINT(1)
) ENGINE=InnoDB DEFAULT CHARSET=%s`, table, charset)
		},
		insert: "INSERT INTO %s (rain_mm, level, servo) VALUES (?, ?, ?)",
		recent: "SELECT id, ts, rain_mm, level, servo FROM %s ORDER BY id DESC LIMIT ?",
	},
	DriverPostgres: {
		driver: "postgres",
		schema: func(table, _ string) string {
			return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id       BIGSERIAL PRIMARY KEY,
	ts       TIMESTAMPTZ NOT NULL DEFAULT now(),
	rain_mm  INTEGER,
	level    VARCHAR(10),
	servo    BOOLEAN
)`, table)
		},
		insert:   "INSERT INTO %s (rain_mm, level, servo) VALUES ($1, $2, $3)",
		recent:   "SELECT id, ts, rain_mm, level, servo FROM %s ORDER BY id DESC LIMIT $1",
		boolArgs: true,
	},
	DriverSQLite: {
		driver: "sqlite",
		schema: func(table, _ string) string {
			return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	ts       TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	rain_mm  INTEGER,
	level    TEXT,
	servo    INTEGER
)`, table)
		},
		insert: "INSERT INTO %s (rain_mm, level, servo) VALUES (?, ?, ?)",
		recent: "SELECT id, ts, rain_mm, level, servo FROM %s ORDER BY id DESC LIMIT ?",
	},
}

func dialectFor(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported driver %q", driver)
	}
	return d, nil
}

func (d dialect) servoArg(on bool) any {
	if d.boolArgs {
		return on
	}
	if on {
		return 1
	}
	return 0
}
