package repository

import (
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"staybook/internal/db"
)

type HostRepository interface {
	GetByEmail(email string) (*db.Host, error)
	CreateHost(email, name, password string) error
}

type hostRepository struct {
	db *sql.DB
}

func NewHostRepository(sqlDB *sql.DB) HostRepository {
	return &hostRepository{db: sqlDB}
}

func (r *hostRepository) GetByEmail(email string) (*db.Host, error) {
	var host db.Host
	err := r.db.QueryRow("SELECT id, email, name, password_hash FROM hosts WHERE email = $1", email).
		Scan(&host.ID, &host.Email, &host.Name, &host.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &host, nil
}

func (r *hostRepository) CreateHost(email, name, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	query := "INSERT INTO hosts (email, name, password_hash) VALUES ($1, $2, $3)"
	_, err = r.db.Exec(query, email, name, hashedPassword)
	return err
}
