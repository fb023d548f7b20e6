package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Wakkzz12/employee-leave-tracker/internal/auth"
	autherrors "github.com/Wakkzz12/employee-leave-tracker/internal/auth/errors"
	"github.com/Wakkzz12/employee-leave-tracker/internal/config"
	"github.com/Wakkzz12/employee-leave-tracker/internal/employee"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/counter"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const seedEmployeeCount = 10

type SeedOptions struct {
	AdminPassword string
}

// Seed creates the head-of-office account and a handful of sample
// employees. Both steps are skipped when their data already exists.
func Seed(ctx context.Context, cfg *config.Config, in *Infra, opts SeedOptions) error {
	logger := zap.L().Named("app.seed")

	authService := auth.NewService(auth.NewRepository(in.GormDB), cfg.Auth, logger)
	email := "admin@" + cfg.Auth.AllowedEmailDomain
	_, err := authService.Register(ctx, auth.RegisterRequest{
		Name:                 "Head of Office",
		Email:                email,
		Password:             opts.AdminPassword,
		PasswordConfirmation: opts.AdminPassword,
	})
	switch {
	case errors.Is(err, autherrors.ErrEmailAlreadyRegistered):
		logger.Info("admin user exists", zap.String("email", email))
	case err != nil:
		return fmt.Errorf("seed admin: %w", err)
	default:
		logger.Info("admin user created", zap.String("email", email))
	}

	db, err := in.GormDB.DB()
	if err != nil {
		return err
	}
	employeeService := employee.NewServiceWithOptions(
		db,
		employee.NewRepository(in.GormDB),
		counter.NewRepository(in.GormDB),
		nil,
		employee.Options{DefaultBalance: cfg.Leave.DefaultBalance},
		logger,
	)

	existing, err := employeeService.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("employees exist, skipping sample data", zap.Int("count", len(existing)))
		return nil
	}

	statuses := []employee.EmploymentStatus{employee.StatusRegular, employee.StatusPermanent, employee.StatusContractual}
	now := time.Now()
	for i := 1; i <= seedEmployeeCount; i++ {
		balance := decimal.NewFromInt(int64(10 + rand.IntN(11)))
		_, err := employeeService.Create(ctx, employee.CreateEmployeeRequest{
			FullName:         fmt.Sprintf("Test Employee %d", i),
			Department:       "Operations",
			Position:         "Staff",
			StartedDate:      now.AddDate(-(1 + rand.IntN(5)), 0, 0).Format(time.DateOnly),
			EmploymentStatus: string(statuses[rand.IntN(len(statuses))]),
			LeaveBalance:     &balance,
		})
		if err != nil {
			return fmt.Errorf("seed employee %d: %w", i, err)
		}
	}

	logger.Info("sample employees created", zap.Int("count", seedEmployeeCount))
	return nil
}
