package auth

import (
	"errors"
	"strings"

	autherrors "github.com/Wakkzz12/employee-leave-tracker/internal/auth/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return autherrors.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_users_email" {
		return autherrors.ErrEmailAlreadyRegistered
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unique constraint") && strings.Contains(errMsg, "users.email") {
		return autherrors.ErrEmailAlreadyRegistered
	}

	return err
}
