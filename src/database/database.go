package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/fleetservis/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateUserTable()
	migrateTransactionTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		auth_provider TEXT DEFAULT 'local',
		is_email_verified BOOLEAN DEFAULT FALSE,
		email_verification_token TEXT,
		email_verification_token_expires_at TIMESTAMP,
		password_reset_token TEXT,
		password_reset_token_expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS transaction_categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS vehicles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		plate TEXT NOT NULL UNIQUE,
		brand TEXT,
		model TEXT,
		owner_name TEXT,
		owner_phone TEXT,
		customer_type TEXT DEFAULT 'individual',
		notes TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS personnel (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		full_name TEXT NOT NULL,
		phone TEXT,
		role TEXT,
		status TEXT DEFAULT 'active',
		hired_at TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		amount REAL NOT NULL DEFAULT 0,
		expense REAL,
		is_expense BOOLEAN DEFAULT FALSE,
		description TEXT,
		transaction_date TEXT NOT NULL,
		category_id INTEGER,
		vehicle_id INTEGER,
		personnel_id INTEGER,
		payment_method TEXT,
		status TEXT NOT NULL DEFAULT 'completed',
		month INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(category_id) REFERENCES transaction_categories(id),
		FOREIGN KEY(vehicle_id) REFERENCES vehicles(id),
		FOREIGN KEY(personnel_id) REFERENCES personnel(id)
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date);
	CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status);

	CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id INTEGER,
		user_id INTEGER,
		detail TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// tableColumns returns the existing column names of a table, or nil when the
// table does not exist yet (creation will bring the full schema anyway).
func tableColumns(table string) map[string]bool {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("table does not exist, no migration needed as table will be created", "table", table)
			} else {
				stdlog.Printf("table %s does not exist, no migration needed as table will be created", table)
			}
			return nil
		}
		if logger.L != nil {
			logger.L.Error("Error checking for table", "table", table, "error", err)
		} else {
			stdlog.Printf("Error checking for table %s: %v", table, err)
		}
		return nil
	}

	rows, err := DB.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema", "table", table, "error", err)
		} else {
			stdlog.Printf("Error querying table schema for %s: %v", table, err)
		}
		return nil
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info", "table", table, "error", err)
			} else {
				stdlog.Printf("Error scanning column info for %s: %v", table, err)
			}
			return nil
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info", "table", table, "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for %s: %v", table, err)
		}
		return nil
	}
	return columnExists
}

func addColumnIfMissing(columns map[string]bool, table, column, definition string) {
	if columns[column] {
		return
	}
	_, err := DB.Exec("ALTER TABLE " + table + " ADD COLUMN " + column + " " + definition)
	if err != nil {
		logger.L.Error("Error adding column", "table", table, "column", column, "error", err)
		return
	}
	logger.L.Info("Added column", "table", table, "column", column)
}

func migrateUserTable() {
	columns := tableColumns("users")
	if columns == nil {
		return
	}
	addColumnIfMissing(columns, "users", "email", "TEXT NOT NULL DEFAULT ''")
	addColumnIfMissing(columns, "users", "auth_provider", "TEXT DEFAULT 'local'")
	addColumnIfMissing(columns, "users", "is_email_verified", "BOOLEAN DEFAULT FALSE")
	addColumnIfMissing(columns, "users", "email_verification_token", "TEXT")
	addColumnIfMissing(columns, "users", "email_verification_token_expires_at", "TIMESTAMP")
	addColumnIfMissing(columns, "users", "password_reset_token", "TEXT")
	addColumnIfMissing(columns, "users", "password_reset_token_expires_at", "TIMESTAMP")
	addColumnIfMissing(columns, "users", "created_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
	addColumnIfMissing(columns, "users", "updated_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
}

func migrateTransactionTable() {
	columns := tableColumns("transactions")
	if columns == nil {
		return
	}
	addColumnIfMissing(columns, "transactions", "expense", "REAL")
	addColumnIfMissing(columns, "transactions", "is_expense", "BOOLEAN DEFAULT FALSE")
	addColumnIfMissing(columns, "transactions", "payment_method", "TEXT")
	addColumnIfMissing(columns, "transactions", "month", "INTEGER")
	addColumnIfMissing(columns, "transactions", "updated_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP")

	if !columns["status"] {
		_, err := DB.Exec("ALTER TABLE transactions ADD COLUMN status TEXT NOT NULL DEFAULT 'completed'")
		if err != nil {
			logger.L.Error("Error adding 'status' column to 'transactions' table", "error", err)
			return
		}
		logger.L.Info("Added 'status' column to 'transactions' table")
		// Older rows predate status tracking and are treated as completed.
		if _, err := DB.Exec("UPDATE transactions SET status = 'completed' WHERE status IS NULL OR status = ''"); err != nil {
			logger.L.Error("Error backfilling 'status' values for existing rows", "error", err)
		}
	}
}
