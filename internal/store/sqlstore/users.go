package sqlstore

import (
	"database/sql"
	"errors"

	"github.com/urbanluxe/urbanluxe/internal/models"
	"github.com/urbanluxe/urbanluxe/internal/store"
)

func (s *SQLStore) CreateUser(user *models.User) error {
	query := s.rebind("INSERT INTO users (username, email, password, avatar) VALUES (?, ?, ?, ?) RETURNING id")
	err := s.db.QueryRow(query, user.Username, user.Email, user.Password, user.Avatar).Scan(&user.ID)
	if err != nil {
		// Both drivers report a unique-constraint violation as an opaque
		// error; classify by checking whether the name or email is taken.
		var taken bool
		check := s.rebind("SELECT EXISTS(SELECT 1 FROM users WHERE username = ? OR email = ?)")
		if checkErr := s.db.QueryRow(check, user.Username, user.Email).Scan(&taken); checkErr == nil && taken {
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *SQLStore) GetUserByUsername(username string) (*models.User, error) {
	query := s.rebind("SELECT id, username, email, password, COALESCE(avatar, ''), created_at FROM users WHERE username = ?")
	return s.scanUser(s.db.QueryRow(query, username))
}

func (s *SQLStore) GetUserByID(id int) (*models.User, error) {
	query := s.rebind("SELECT id, username, email, password, COALESCE(avatar, ''), created_at FROM users WHERE id = ?")
	return s.scanUser(s.db.QueryRow(query, id))
}

func (s *SQLStore) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.Avatar, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
