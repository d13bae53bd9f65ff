// mirror/accounts.go
package mirror

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/ViniZap4/stride-server/domain"
)

var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const minPasswordLen = 8

type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Accounts struct {
	pool *pgxpool.Pool
}

func NewAccounts(pool *pgxpool.Pool) *Accounts {
	return &Accounts{pool: pool}
}

func (a *Accounts) Register(ctx context.Context, email, password string) (Account, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return Account{}, &domain.ValidationError{Field: "email", Reason: "must be an email address"}
	}
	if len(password) < minPasswordLen {
		return Account{}, &domain.ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLen)}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}

	acc := Account{ID: domain.NewID(), Email: email}
	err = a.pool.QueryRow(ctx,
		`INSERT INTO accounts (id, email, password_hash) VALUES ($1, $2, $3) RETURNING created_at`,
		acc.ID, acc.Email, string(hash),
	).Scan(&acc.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return Account{}, ErrAccountExists
		}
		return Account{}, fmt.Errorf("insert account: %w", err)
	}
	return acc, nil
}

func (a *Accounts) Authenticate(ctx context.Context, email, password string) (Account, error) {
	var (
		acc  Account
		hash string
	)
	err := a.pool.QueryRow(ctx,
		`SELECT id::text, email, password_hash, created_at FROM accounts WHERE email = $1`,
		normalizeEmail(email),
	).Scan(&acc.ID, &acc.Email, &hash, &acc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, fmt.Errorf("find account: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Account{}, ErrInvalidCredentials
	}
	return acc, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
