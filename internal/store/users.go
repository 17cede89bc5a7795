package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alextreichler/shoppingmall/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, username, password, role, full_name, address, payment_info`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u           models.User
		role        string
		address     sql.NullString
		paymentInfo sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Password, &role, &u.FullName, &address, &paymentInfo); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.Address = nullToPtr(address)
	u.PaymentInfo = nullToPtr(paymentInfo)
	return &u, nil
}

func nullToPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func ptrToNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NewUser describes a registration request.
type NewUser struct {
	Username    string
	Password    string
	Role        string
	FullName    string
	Address     *string
	PaymentInfo *string
}

// RegisterUser creates a user. A taken username yields ErrDuplicateUsername
// and leaves the existing row untouched.
func (s *Store) RegisterUser(ctx context.Context, nu NewUser) (*models.User, error) {
	role, ok := models.ParseRole(nu.Role)
	if !ok {
		return nil, ErrInvalidRole
	}
	defer timeDB(ctx, "register_user")()

	hashed, err := bcrypt.GenerateFromPassword([]byte(nu.Password), s.cost())
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrInvalidPassword
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, inserted, err := s.insertUser(ctx, nu, role, string(hashed))
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, ErrDuplicateUsername
	}
	return u, nil
}

// RegisterAdmin is RegisterUser with the role fixed to admin.
func (s *Store) RegisterAdmin(ctx context.Context, username, password, fullName string) (*models.User, error) {
	return s.RegisterUser(ctx, NewUser{
		Username: username,
		Password: password,
		Role:     string(models.RoleAdmin),
		FullName: fullName,
	})
}

// EnsureAdmin creates the admin account unless a user with that name is
// already stored. It reports whether a row was written.
func (s *Store) EnsureAdmin(ctx context.Context, username, password, fullName string) (bool, error) {
	_, err := s.RegisterAdmin(ctx, username, password, fullName)
	if errors.Is(err, ErrDuplicateUsername) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) insertUser(ctx context.Context, nu NewUser, role models.Role, hashedPassword string) (*models.User, bool, error) {
	query := `
		INSERT INTO users (username, password, role, full_name, address, payment_info)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO NOTHING
	`
	res, err := s.DB.ExecContext(ctx, query, nu.Username, hashedPassword, string(role), nu.FullName, ptrToNull(nu.Address), ptrToNull(nu.PaymentInfo))
	if err != nil {
		return nil, false, fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		return nil, false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, false, err
	}
	return &models.User{
		ID:          int(id),
		Username:    nu.Username,
		Password:    hashedPassword,
		Role:        role,
		FullName:    nu.FullName,
		Address:     nu.Address,
		PaymentInfo: nu.PaymentInfo,
	}, true, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user whose username and password both match exactly.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	defer timeDB(ctx, "authenticate")()

	u, err := s.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// UpdateUserProfile overwrites full name, address and payment info.
// Username, password and role are never touched.
func (s *Store) UpdateUserProfile(ctx context.Context, username, fullName string, address, paymentInfo *string) error {
	defer timeDB(ctx, "update_user")()

	query := `UPDATE users SET full_name = ?, address = ?, payment_info = ? WHERE username = ?`
	res, err := s.DB.ExecContext(ctx, query, fullName, ptrToNull(address), ptrToNull(paymentInfo), username)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
