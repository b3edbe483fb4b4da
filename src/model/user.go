package model

import (
	"database/sql"
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID              int       `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Password        string    `json:"-"`
	AuthProvider    string    `json:"auth_provider"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	EmailVerificationToken          sql.NullString `json:"-"`
	EmailVerificationTokenExpiresAt sql.NullTime   `json:"-"`
	PasswordResetToken              sql.NullString `json:"-"`
	PasswordResetTokenExpiresAt     sql.NullTime   `json:"-"`
}

type Session struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	UserAgent    string    `json:"user_agent"`
	ClientIP     string    `json:"client_ip"`
	IsBlocked    bool      `json:"is_blocked"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

const userColumns = `id, username, password, email, auth_provider, is_email_verified,
	email_verification_token, email_verification_token_expires_at,
	password_reset_token, password_reset_token_expires_at, created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID, &user.Username, &user.Password, &user.Email,
		&user.AuthProvider, &user.IsEmailVerified,
		&user.EmailVerificationToken, &user.EmailVerificationTokenExpiresAt,
		&user.PasswordResetToken, &user.PasswordResetTokenExpiresAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user into the database and sets its ID.
func (u *User) CreateUser(db *sql.DB) error {
	if u.AuthProvider == "" {
		u.AuthProvider = "local"
	}
	query := `
	INSERT INTO users (username, password, email, auth_provider, is_email_verified,
		email_verification_token, email_verification_token_expires_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := db.Exec(query,
		u.Username, u.Password, u.Email, u.AuthProvider, u.IsEmailVerified,
		u.EmailVerificationToken, u.EmailVerificationTokenExpiresAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = int(id)
	return nil
}

func GetUserByUsername(db *sql.DB, username string) (*User, error) {
	row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func GetUserByEmail(db *sql.DB, email string) (*User, error) {
	row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func GetUserByID(db *sql.DB, id int) (*User, error) {
	row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func GetUserByVerificationToken(db *sql.DB, token string) (*User, error) {
	row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email_verification_token = ?`, token)
	return scanUser(row)
}

func GetUserByPasswordResetToken(db *sql.DB, token string) (*User, error) {
	row := db.QueryRow(`SELECT `+userColumns+` FROM users WHERE password_reset_token = ?`, token)
	return scanUser(row)
}

// MarkEmailVerified flips the verified flag and clears the verification token.
func (u *User) MarkEmailVerified(db *sql.DB) error {
	_, err := db.Exec(`
	UPDATE users
	SET is_email_verified = TRUE,
		email_verification_token = NULL,
		email_verification_token_expires_at = NULL,
		updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`, u.ID)
	if err == nil {
		u.IsEmailVerified = true
		u.EmailVerificationToken = sql.NullString{}
		u.EmailVerificationTokenExpiresAt = sql.NullTime{}
	}
	return err
}

// SetPasswordResetToken stores a reset token and its expiry on the user row.
func (u *User) SetPasswordResetToken(db *sql.DB, token string, expiresAt time.Time) error {
	_, err := db.Exec(`
	UPDATE users
	SET password_reset_token = ?, password_reset_token_expires_at = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`, token, expiresAt, u.ID)
	return err
}

// UpdatePassword replaces the stored hash and clears any pending reset token.
func (u *User) UpdatePassword(db *sql.DB, hashedPassword string) error {
	_, err := db.Exec(`
	UPDATE users
	SET password = ?,
		password_reset_token = NULL,
		password_reset_token_expires_at = NULL,
		updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`, hashedPassword, u.ID)
	if err == nil {
		u.Password = hashedPassword
	}
	return err
}

// CreateSession inserts a new session into the database.
func CreateSession(db *sql.DB, session *Session) error {
	session.CreatedAt = time.Now()
	_, err := db.Exec(`
	INSERT INTO sessions (user_id, token, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.UserID,
		session.Token,
		session.RefreshToken,
		session.UserAgent,
		session.ClientIP,
		session.IsBlocked,
		session.ExpiresAt,
		session.CreatedAt,
	)
	return err
}

// GetSessionByToken retrieves an active, non-blocked session by its access token.
func GetSessionByToken(db *sql.DB, token string) (*Session, error) {
	return getSession(db, `token = ?`, token)
}

// GetSessionByRefreshToken retrieves an active, non-blocked session by its refresh token.
func GetSessionByRefreshToken(db *sql.DB, refreshToken string) (*Session, error) {
	return getSession(db, `refresh_token = ?`, refreshToken)
}

func getSession(db *sql.DB, where string, arg any) (*Session, error) {
	query := `
	SELECT id, user_id, token, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at
	FROM sessions
	WHERE ` + where + ` AND is_blocked = FALSE AND expires_at > ?`

	row := db.QueryRow(query, arg, time.Now())
	var session Session
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.RefreshToken,
		&session.UserAgent,
		&session.ClientIP,
		&session.IsBlocked,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("session not found, expired, or blocked")
		}
		return nil, err
	}
	return &session, nil
}

// UpdateSessionTokens rotates the access and refresh tokens of a session.
func UpdateSessionTokens(db *sql.DB, session *Session) error {
	_, err := db.Exec(`
	UPDATE sessions SET token = ?, refresh_token = ?, expires_at = ? WHERE id = ?`,
		session.Token, session.RefreshToken, session.ExpiresAt, session.ID)
	return err
}

// DeleteSessionByToken removes a session based on the access token. Deleting
// an already-gone session is not an error; logout stays idempotent.
func DeleteSessionByToken(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// DeleteSessionsByUserID removes every session of a user, e.g. after a
// password change.
func DeleteSessionsByUserID(db *sql.DB, userID int) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}
